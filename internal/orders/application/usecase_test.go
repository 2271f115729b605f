package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	coupondomain "pooja-supplies/internal/coupons/domain"
	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/money"
)

// MockOrderRepository is a mock implementation of OrderRepository.
// It stores copies so the use case cannot mutate stored state directly.
type MockOrderRepository struct {
	orders map[string]domain.Order
	err    error
	// beforeCAS runs before every compare-and-set, simulating a racing writer
	beforeCAS func(m *MockOrderRepository, id string)
	// stalled makes compare-and-set hang until its context ends
	stalled bool
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]domain.Order)}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.err != nil {
		return m.err
	}
	m.orders[order.ID] = *order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.NewOrderNotFound(id)
	}
	return &order, nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, o := range m.orders {
		order := o
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		result = append(result, &order)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PlacedAt.After(result[j].PlacedAt) })
	return result, nil
}

func (m *MockOrderRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	if m.stalled {
		<-ctx.Done()
		return false, ctx.Err()
	}
	if m.beforeCAS != nil {
		m.beforeCAS(m, id)
	}
	if m.err != nil {
		return false, m.err
	}
	order, ok := m.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	m.orders[id] = order
	return true, nil
}

func (m *MockOrderRepository) CompareAndSetPaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus, utr *string) (bool, error) {
	if m.beforeCAS != nil {
		m.beforeCAS(m, id)
	}
	if m.err != nil {
		return false, m.err
	}
	order, ok := m.orders[id]
	if !ok || order.PaymentStatus != from || order.Status == domain.OrderStatusCancelled {
		return false, nil
	}
	order.PaymentStatus = to
	if utr != nil {
		order.UPITransactionID = *utr
	}
	m.orders[id] = order
	return true, nil
}

func (m *MockOrderRepository) MarkStockApplied(ctx context.Context, id string, at time.Time) error {
	order := m.orders[id]
	order.StockAppliedAt = &at
	m.orders[id] = order
	return nil
}

func (m *MockOrderRepository) ListStockPending(ctx context.Context, limit int) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, o := range m.orders {
		order := o
		if order.Status == domain.OrderStatusDelivered && order.StockAppliedAt == nil {
			result = append(result, &order)
		}
	}
	return result, nil
}

// MockCatalogClient is a mock implementation of CatalogClient
type MockCatalogClient struct {
	products  map[string]*ports.ProductInfo
	movements map[string]bool
	err       error
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{
		products: map[string]*ports.ProductInfo{
			"diya":    {ID: "diya", Name: "Brass diya", Price: money.FromRupees(100), Stock: 10},
			"incense": {ID: "incense", Name: "Sandalwood incense", Price: money.FromPaise(4950), Stock: 1},
		},
		movements: make(map[string]bool),
	}
}

func (m *MockCatalogClient) GetProduct(ctx context.Context, productID string) (*ports.ProductInfo, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, errors.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (m *MockCatalogClient) DecrementStock(ctx context.Context, productID string, qty int, reference string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	p, ok := m.products[productID]
	if !ok {
		return 0, errors.NewNotFound("product", productID)
	}
	key := reference + "/" + productID
	if m.movements[key] {
		return p.Stock, nil
	}
	m.movements[key] = true
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	return p.Stock, nil
}

// MockCouponLookup is a mock implementation of CouponLookup
type MockCouponLookup struct {
	coupons map[string]*coupondomain.Coupon
}

func (m *MockCouponLookup) FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error) {
	return m.coupons[code], nil
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	placed      []string
	transitions []string
	// stalled makes publishing hang until its context ends
	stalled bool
}

func (m *MockEventPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	if m.stalled {
		<-ctx.Done()
		return ctx.Err()
	}
	m.placed = append(m.placed, order.ID)
	return nil
}

func (m *MockEventPublisher) PublishOrderUpdated(ctx context.Context, order *domain.Order, transition string) error {
	if m.stalled {
		<-ctx.Done()
		return ctx.Err()
	}
	m.transitions = append(m.transitions, transition)
	return nil
}

type fixture struct {
	repo      *MockOrderRepository
	catalog   *MockCatalogClient
	coupons   *MockCouponLookup
	publisher *MockEventPublisher
	useCase   *OrderUseCase
}

var fixedNow = time.Date(2030, 10, 20, 9, 30, 0, 0, time.UTC)

func newFixture(opts Options) *fixture {
	f := &fixture{
		repo:      NewMockOrderRepository(),
		catalog:   NewMockCatalogClient(),
		coupons:   &MockCouponLookup{coupons: map[string]*coupondomain.Coupon{}},
		publisher: &MockEventPublisher{},
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	f.useCase = NewOrderUseCase(f.repo, f.coupons, f.catalog, f.publisher, logger.New("test", "debug"), opts)
	return f
}

func (f *fixture) addCoupon(code string, kind coupondomain.Kind, amount string, minOrder money.Money, expiry string) {
	d, _ := coupondomain.ParseDate(expiry)
	c, _ := coupondomain.NewCoupon(code, kind, decimal.RequireFromString(amount), minOrder, d)
	f.coupons.coupons[c.Code] = c
}

var testAddress = domain.Address{
	Name:    "Ravi Kumar",
	Phone:   "9123456780",
	Line1:   "4 Mylapore Tank Road",
	City:    "Chennai",
	State:   "Tamil Nadu",
	Pincode: "600004",
}

func (f *fixture) place(t *testing.T, method string, items ...ItemInput) *domain.Order {
	t.Helper()
	if len(items) == 0 {
		items = []ItemInput{{ProductID: "diya", Quantity: 2}}
	}
	output, err := f.useCase.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        "user-1",
		Items:         items,
		Address:       testAddress,
		PaymentMethod: method,
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return output.Order
}

func TestPlaceOrder_WithCoupon(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	f.addCoupon("DIWALI10", coupondomain.KindPercent, "10", money.FromRupees(150), "2030-12-31")
	expected := money.FromRupees(180)

	// Act
	output, err := f.useCase.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        "user-1",
		Items:         []ItemInput{{ProductID: "diya", Quantity: 2}},
		CouponCode:    "diwali10",
		Address:       testAddress,
		PaymentMethod: "upi",
		ExpectedTotal: &expected,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	order := output.Order
	if order.TotalAmount != money.FromRupees(180) || order.Discount != money.FromRupees(20) {
		t.Errorf("expected total 180 and discount 20, got %s and %s", order.TotalAmount, order.Discount)
	}
	want := domain.CouponSnapshot{
		Code:           "DIWALI10",
		Kind:           coupondomain.KindPercent,
		Amount:         "10",
		MinOrderAmount: money.FromRupees(150),
		Expiry:         "2030-12-31",
	}
	if order.Coupon == nil || *order.Coupon != want {
		t.Errorf("expected coupon snapshot %+v, got %+v", want, order.Coupon)
	}
	if order.Lines[0].Name != "Brass diya" {
		t.Errorf("expected line name from catalog, got %s", order.Lines[0].Name)
	}
	if _, ok := f.repo.orders[order.ID]; !ok {
		t.Error("expected order to be stored")
	}
	if len(f.publisher.placed) != 1 {
		t.Errorf("expected 1 placed event, got %d", len(f.publisher.placed))
	}
}

func TestPlaceOrder_RevalidatesExpiredCoupon(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	f.addCoupon("SUMMER", coupondomain.KindFlat, "50", 0, "2030-06-30")

	// Act
	_, err := f.useCase.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        "user-1",
		Items:         []ItemInput{{ProductID: "diya", Quantity: 1}},
		CouponCode:    "SUMMER",
		Address:       testAddress,
		PaymentMethod: "COD",
	})

	// Assert
	if !errors.HasReason(err, coupondomain.ReasonExpired) {
		t.Errorf("expected EXPIRED, got %v", err)
	}
	if len(f.repo.orders) != 0 {
		t.Error("expected no order to be stored")
	}
}

func TestPlaceOrder_PriceChanged(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	stale := money.FromRupees(150)

	// Act
	_, err := f.useCase.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        "user-1",
		Items:         []ItemInput{{ProductID: "diya", Quantity: 2}},
		Address:       testAddress,
		PaymentMethod: "COD",
		ExpectedTotal: &stale,
	})

	// Assert
	if !errors.Is(err, errors.CodeConflict) || !errors.HasReason(err, domain.ReasonPriceChanged) {
		t.Errorf("expected PRICE_CHANGED conflict, got %v", err)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	// Arrange
	f := newFixture(Options{})

	// Act
	_, err := f.useCase.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:        "user-1",
		Items:         []ItemInput{{ProductID: "conch", Quantity: 1}},
		Address:       testAddress,
		PaymentMethod: "COD",
	})

	// Assert
	if !errors.Is(err, errors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestQuoteCart(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	f.addCoupon("FLAT500", coupondomain.KindFlat, "500", money.FromRupees(100), "2031-01-01")

	// Act
	output, err := f.useCase.QuoteCart(context.Background(), QuoteInput{
		Items:      []ItemInput{{ProductID: "diya", Quantity: 1}, {ProductID: "incense", Quantity: 2}},
		CouponCode: "flat500",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output.Pricing.Subtotal != money.FromRupees(199) {
		t.Errorf("expected subtotal 199.00, got %s", output.Pricing.Subtotal)
	}
	if output.Pricing.FinalTotal != 0 || output.Pricing.Discount != money.FromRupees(199) {
		t.Errorf("expected flat discount capped at subtotal, got %+v", output.Pricing)
	}
}

func TestAdvanceStatus_DeliveredDecrementsStockOnce(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "COD", ItemInput{ProductID: "diya", Quantity: 3}, ItemInput{ProductID: "incense", Quantity: 5})
	ctx := context.Background()

	// Act
	_, err := f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: order.ID, Status: "Shipped"})
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	output, err := f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: order.ID, Status: "Delivered"})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	_, again := f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: order.ID, Status: "Delivered"})

	// Assert
	if output.StockPending {
		t.Error("expected stock to be applied")
	}
	if got := f.catalog.products["diya"].Stock; got != 7 {
		t.Errorf("expected diya stock 7, got %d", got)
	}
	if got := f.catalog.products["incense"].Stock; got != 0 {
		t.Errorf("expected incense stock floored at 0, got %d", got)
	}
	if !errors.HasReason(again, domain.ReasonTerminalState) {
		t.Errorf("expected TERMINAL_STATE on second delivery, got %v", again)
	}
	if got := f.catalog.products["diya"].Stock; got != 7 {
		t.Errorf("expected no second decrement, got stock %d", got)
	}
	if f.repo.orders[order.ID].StockAppliedAt == nil {
		t.Error("expected stock applied marker")
	}
	if f.repo.orders[order.ID].PaymentStatus != domain.PaymentStatusPending {
		t.Error("expected COD payment untouched without auto-paid option")
	}
}

func TestAdvanceStatus_PendingToDeliveredRejected(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "COD")

	// Act
	_, err := f.useCase.AdvanceStatus(context.Background(), AdvanceStatusInput{ID: order.ID, Status: "Delivered"})

	// Assert
	if !errors.HasReason(err, domain.ReasonInvalidMove) {
		t.Errorf("expected INVALID_MOVE, got %v", err)
	}
	if f.catalog.products["diya"].Stock != 10 {
		t.Error("expected stock untouched")
	}
}

func TestAdvanceStatus_LostRaceDoesNotDecrement(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "COD")
	f.repo.orders[order.ID] = func() domain.Order { o := f.repo.orders[order.ID]; o.Status = domain.OrderStatusShipped; return o }()
	f.repo.beforeCAS = func(m *MockOrderRepository, id string) {
		// Another admin delivers first.
		o := m.orders[id]
		o.Status = domain.OrderStatusDelivered
		m.orders[id] = o
	}

	// Act
	_, err := f.useCase.AdvanceStatus(context.Background(), AdvanceStatusInput{ID: order.ID, Status: "Delivered"})

	// Assert
	if !errors.HasReason(err, domain.ReasonTerminalState) {
		t.Errorf("expected TERMINAL_STATE after losing the race, got %v", err)
	}
	if f.catalog.products["diya"].Stock != 10 {
		t.Errorf("expected loser not to decrement, got stock %d", f.catalog.products["diya"].Stock)
	}
}

func TestSubmitUTR_ConcurrentUpdate(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "UPI")
	f.repo.beforeCAS = func(m *MockOrderRepository, id string) {
		// The buyer's other device submits first.
		m.beforeCAS = nil
		o := m.orders[id]
		o.PaymentStatus = domain.PaymentStatusUnderReview
		o.UPITransactionID = "UTR00001111"
		m.orders[id] = o
	}

	// Act
	_, err := f.useCase.SubmitUTR(context.Background(), SubmitUTRInput{ID: order.ID, UserID: "user-1", UTR: "UTR22223333"})

	// Assert
	if !errors.HasReason(err, domain.ReasonConcurrentUpdate) {
		t.Errorf("expected CONCURRENT_UPDATE, got %v", err)
	}
	if f.repo.orders[order.ID].UPITransactionID != "UTR00001111" {
		t.Error("expected the winning UTR to be kept")
	}
}

func TestAdvanceStatus_StoreUnavailable(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "COD")
	f.repo.orders[order.ID] = func() domain.Order { o := f.repo.orders[order.ID]; o.Status = domain.OrderStatusShipped; return o }()
	f.repo.err = errors.NewUnavailable("database unreachable", nil)

	// Act
	_, err := f.useCase.AdvanceStatus(context.Background(), AdvanceStatusInput{ID: order.ID, Status: "Delivered"})

	// Assert
	if !errors.Is(err, errors.CodeUnavailable) {
		t.Errorf("expected unavailable error, got %v", err)
	}
	if f.catalog.products["diya"].Stock != 10 {
		t.Error("expected no stock change when the status write failed")
	}
}

func TestAdvanceStatus_SlowStoreTimesOut(t *testing.T) {
	// Arrange
	f := newFixture(Options{StoreTimeout: 50 * time.Millisecond})
	order := f.place(t, "COD")
	f.repo.stalled = true

	// Act
	start := time.Now()
	_, err := f.useCase.AdvanceStatus(context.Background(), AdvanceStatusInput{ID: order.ID, Status: "Shipped"})
	elapsed := time.Since(start)

	// Assert
	if !errors.Is(err, errors.CodeUnavailable) {
		t.Errorf("expected unavailable error, got %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("expected the call to be abandoned near the deadline, took %v", elapsed)
	}
	if f.repo.orders[order.ID].Status != domain.OrderStatusPending {
		t.Error("expected status unchanged")
	}
}

func TestAdvanceStatus_SlowPublisherDoesNotBlock(t *testing.T) {
	// Arrange
	f := newFixture(Options{PublishTimeout: 50 * time.Millisecond})
	order := f.place(t, "COD")
	f.publisher.stalled = true

	// Act
	start := time.Now()
	output, err := f.useCase.AdvanceStatus(context.Background(), AdvanceStatusInput{ID: order.ID, Status: "Shipped"})
	elapsed := time.Since(start)

	// Assert
	if err != nil {
		t.Fatalf("expected the committed transition to succeed, got %v", err)
	}
	if output.Order.Status != domain.OrderStatusShipped {
		t.Errorf("expected Shipped, got %s", output.Order.Status)
	}
	if elapsed > time.Second {
		t.Errorf("expected publishing to give up near its deadline, took %v", elapsed)
	}
	if len(f.publisher.transitions) != 0 {
		t.Errorf("expected no event recorded, got %v", f.publisher.transitions)
	}
}

func TestPlaceOrder_CancelledRequestStillPublishes(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	publisher := &cancelAwarePublisher{}
	f.useCase.publisher = publisher
	cancel()

	// Act
	_, err := f.useCase.PlaceOrder(ctx, PlaceOrderInput{
		UserID:        "user-1",
		Items:         []ItemInput{{ProductID: "diya", Quantity: 1}},
		Address:       testAddress,
		PaymentMethod: "COD",
	})

	// Assert
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if publisher.sawCancelled {
		t.Error("expected the publish context to outlive the request")
	}
}

// cancelAwarePublisher records whether it was handed a context that was
// already cancelled
type cancelAwarePublisher struct {
	sawCancelled bool
}

func (p *cancelAwarePublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	p.sawCancelled = ctx.Err() != nil
	return nil
}

func (p *cancelAwarePublisher) PublishOrderUpdated(ctx context.Context, order *domain.Order, transition string) error {
	return nil
}

func TestAdvanceStatus_CatalogDownThenReconcile(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "COD")
	ctx := context.Background()
	if _, err := f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: order.ID, Status: "Shipped"}); err != nil {
		t.Fatalf("ship: %v", err)
	}
	f.catalog.err = errors.NewUnavailable("catalog unreachable", nil)

	// Act
	output, err := f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: order.ID, Status: "Delivered"})

	// Assert
	if err != nil {
		t.Fatalf("expected delivery to stand, got %v", err)
	}
	if !output.StockPending {
		t.Error("expected stock to be pending")
	}

	f.catalog.err = nil
	done, err := f.useCase.ReconcilePendingStock(ctx, 10)
	if err != nil || done != 1 {
		t.Fatalf("expected 1 reconciled order, got %d (%v)", done, err)
	}
	if f.catalog.products["diya"].Stock != 8 {
		t.Errorf("expected stock 8, got %d", f.catalog.products["diya"].Stock)
	}

	// Reconciling again is a no-op.
	if _, err := f.useCase.ReconcileStock(ctx, order.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if f.catalog.products["diya"].Stock != 8 {
		t.Errorf("expected stock to stay 8, got %d", f.catalog.products["diya"].Stock)
	}
}

func TestReconcileStock_NotDelivered(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "COD")

	// Act
	_, err := f.useCase.ReconcileStock(context.Background(), order.ID)

	// Assert
	if !errors.HasReason(err, domain.ReasonNotDelivered) {
		t.Errorf("expected NOT_DELIVERED, got %v", err)
	}
}

func TestAdvanceStatus_CODAutoPaid(t *testing.T) {
	// Arrange
	f := newFixture(Options{CODAutoPaidOnDelivery: true})
	order := f.place(t, "COD")
	ctx := context.Background()
	_, _ = f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: order.ID, Status: "Shipped"})

	// Act
	output, err := f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: order.ID, Status: "Delivered"})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output.Order.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected Paid, got %s", output.Order.PaymentStatus)
	}
	want := []string{"shipped", "delivered", "paid"}
	if len(f.publisher.transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, f.publisher.transitions)
	}
	for i := range want {
		if f.publisher.transitions[i] != want[i] {
			t.Errorf("expected transitions %v, got %v", want, f.publisher.transitions)
		}
	}
}

func TestCancelOrder(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	ctx := context.Background()
	pending := f.place(t, "COD")
	shipped := f.place(t, "COD")
	_, _ = f.useCase.AdvanceStatus(ctx, AdvanceStatusInput{ID: shipped.ID, Status: "Shipped"})

	// Act
	_, strangerErr := f.useCase.CancelOrder(ctx, CancelOrderInput{ID: pending.ID, UserID: "user-2"})
	output, err := f.useCase.CancelOrder(ctx, CancelOrderInput{ID: pending.ID, UserID: "user-1"})
	_, againErr := f.useCase.CancelOrder(ctx, CancelOrderInput{ID: pending.ID, UserID: "user-1"})
	_, shippedErr := f.useCase.CancelOrder(ctx, CancelOrderInput{ID: shipped.ID, Admin: true})

	// Assert
	if !errors.Is(strangerErr, errors.CodeNotFound) {
		t.Errorf("expected not found for another user's order, got %v", strangerErr)
	}
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output.Order.Status != domain.OrderStatusCancelled {
		t.Errorf("expected Cancelled, got %s", output.Order.Status)
	}
	if !errors.HasReason(againErr, domain.ReasonNotCancellable) {
		t.Errorf("expected NOT_CANCELLABLE, got %v", againErr)
	}
	if !errors.HasReason(shippedErr, domain.ReasonNotCancellable) {
		t.Errorf("expected NOT_CANCELLABLE for shipped order, got %v", shippedErr)
	}
	if f.catalog.products["diya"].Stock != 10 {
		t.Error("expected cancellation to leave stock alone")
	}
}

func TestUPIPaymentFlow(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	ctx := context.Background()
	order := f.place(t, "UPI")

	// Act
	_, err := f.useCase.SubmitUTR(ctx, SubmitUTRInput{ID: order.ID, UserID: "user-1", UTR: "utr12345678"})
	if err != nil {
		t.Fatalf("submit utr: %v", err)
	}
	resubmitted, err := f.useCase.SubmitUTR(ctx, SubmitUTRInput{ID: order.ID, UserID: "user-1", UTR: "UTR99998888"})
	if err != nil {
		t.Fatalf("resubmit utr: %v", err)
	}
	paid, err := f.useCase.MarkPaid(ctx, order.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	_, againErr := f.useCase.MarkPaid(ctx, order.ID)
	_, utrAfterPaid := f.useCase.SubmitUTR(ctx, SubmitUTRInput{ID: order.ID, UserID: "user-1", UTR: "UTR11112222"})

	// Assert
	if resubmitted.Order.UPITransactionID != "UTR99998888" {
		t.Errorf("expected replaced UTR, got %s", resubmitted.Order.UPITransactionID)
	}
	if resubmitted.Order.PaymentStatus != domain.PaymentStatusUnderReview {
		t.Errorf("expected UnderReview, got %s", resubmitted.Order.PaymentStatus)
	}
	if paid.Order.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected Paid, got %s", paid.Order.PaymentStatus)
	}
	if !errors.Is(againErr, errors.CodeIllegalTransition) || !errors.HasReason(againErr, domain.ReasonAlreadyPaid) {
		t.Errorf("expected ALREADY_PAID, got %v", againErr)
	}
	if !errors.HasReason(utrAfterPaid, domain.ReasonAlreadyPaid) {
		t.Errorf("expected ALREADY_PAID for UTR after payment, got %v", utrAfterPaid)
	}
	if f.repo.orders[order.ID].Status != domain.OrderStatusPending {
		t.Error("expected payment transitions to leave the order status alone")
	}
}

func TestSubmitUTR_CODRejected(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	order := f.place(t, "COD")

	// Act
	_, err := f.useCase.SubmitUTR(context.Background(), SubmitUTRInput{ID: order.ID, UserID: "user-1", UTR: "UTR12345678"})

	// Assert
	if !errors.HasReason(err, domain.ReasonNotUPI) {
		t.Errorf("expected NOT_UPI, got %v", err)
	}
}

func TestSalesReport(t *testing.T) {
	// Arrange
	ist, _ := time.LoadLocation("Asia/Kolkata")
	f := newFixture(Options{Location: ist})
	ctx := context.Background()

	march := f.place(t, "COD")
	april := f.place(t, "UPI", ItemInput{ProductID: "incense", Quantity: 1})
	cancelled := f.place(t, "COD")
	for id, placed := range map[string]time.Time{
		// 20:00 UTC on March 31 is April 1 in IST.
		march.ID:     time.Date(2030, 3, 15, 10, 0, 0, 0, time.UTC),
		april.ID:     time.Date(2030, 3, 31, 20, 0, 0, 0, time.UTC),
		cancelled.ID: time.Date(2030, 3, 20, 10, 0, 0, 0, time.UTC),
	} {
		o := f.repo.orders[id]
		o.PlacedAt = placed
		f.repo.orders[id] = o
	}
	_, _ = f.useCase.CancelOrder(ctx, CancelOrderInput{ID: cancelled.ID, Admin: true})

	// Act
	report, err := f.useCase.SalesReport(ctx, SalesReportInput{})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.TotalOrders != 3 {
		t.Errorf("expected 3 orders, got %d", report.TotalOrders)
	}
	if report.TotalRevenue != money.FromPaise(24950) {
		t.Errorf("expected revenue 249.50, got %s", report.TotalRevenue)
	}
	if report.StatusCounts[domain.OrderStatusCancelled] != 1 {
		t.Errorf("expected 1 cancelled order, got %d", report.StatusCounts[domain.OrderStatusCancelled])
	}
	if len(report.Monthly) != 2 || report.Monthly[0].Month != "2030-03" || report.Monthly[1].Month != "2030-04" {
		t.Fatalf("expected March and April buckets, got %+v", report.Monthly)
	}
	if report.Monthly[0].Revenue != money.FromRupees(200) {
		t.Errorf("expected March revenue 200, got %s", report.Monthly[0].Revenue)
	}
}

package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	coupondomain "pooja-supplies/internal/coupons/domain"
	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/deadline"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/metrics"
	"pooja-supplies/pkg/money"
)

// Options tune the order use case
type Options struct {
	// Location is the store time zone used for coupon expiry and reports
	Location *time.Location
	// CODAutoPaidOnDelivery marks COD orders paid when they are delivered
	CODAutoPaidOnDelivery bool
	// StoreTimeout bounds each order store, coupon lookup and inventory
	// call; a call that overruns fails with STORE_UNAVAILABLE. Zero leaves
	// calls unbounded.
	StoreTimeout time.Duration
	// PublishTimeout bounds event publishing, default 2s
	PublishTimeout time.Duration
	// Now overrides the clock
	Now func() time.Time
}

// OrderUseCase handles order business logic
type OrderUseCase struct {
	repo           ports.OrderRepository
	coupons        ports.CouponLookup
	catalog        ports.CatalogClient
	publisher      ports.EventPublisher
	log            *logger.Logger
	loc            *time.Location
	codAutoPaid    bool
	publishTimeout time.Duration
	now            func() time.Time
}

const defaultPublishTimeout = 2 * time.Second

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(
	repo ports.OrderRepository,
	coupons ports.CouponLookup,
	catalog ports.CatalogClient,
	publisher ports.EventPublisher,
	log *logger.Logger,
	opts Options,
) *OrderUseCase {
	if opts.StoreTimeout > 0 {
		repo = timedOrders{next: repo, d: opts.StoreTimeout}
		coupons = timedCoupons{next: coupons, d: opts.StoreTimeout}
		catalog = timedCatalog{next: catalog, d: opts.StoreTimeout}
	}

	uc := &OrderUseCase{
		repo:           repo,
		coupons:        coupons,
		catalog:        catalog,
		publisher:      publisher,
		log:            log,
		loc:            opts.Location,
		codAutoPaid:    opts.CODAutoPaidOnDelivery,
		publishTimeout: opts.PublishTimeout,
		now:            opts.Now,
	}
	if uc.publishTimeout <= 0 {
		uc.publishTimeout = defaultPublishTimeout
	}
	if uc.loc == nil {
		uc.loc = time.UTC
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc
}

// ItemInput is a product and quantity requested by the buyer
type ItemInput struct {
	ProductID string
	Quantity  int
}

// QuoteInput represents the input for pricing a cart
type QuoteInput struct {
	Items      []ItemInput
	CouponCode string
}

// QuoteOutput is a priced cart
type QuoteOutput struct {
	Lines   []domain.CartLine
	Pricing domain.DiscountResult
	Coupon  *coupondomain.Coupon
}

// QuoteCart prices a cart at current catalog prices
func (uc *OrderUseCase) QuoteCart(ctx context.Context, input QuoteInput) (*QuoteOutput, error) {
	cart, coupon, err := uc.priceCart(ctx, input.Items, input.CouponCode)
	if err != nil {
		return nil, err
	}
	return &QuoteOutput{
		Lines:   cart.Lines(),
		Pricing: domain.ComputeTotal(cart, coupon),
		Coupon:  coupon,
	}, nil
}

// PlaceOrderInput represents the input for placing an order
type PlaceOrderInput struct {
	UserID        string
	Items         []ItemInput
	CouponCode    string
	Address       domain.Address
	PaymentMethod string
	// ExpectedTotal is the total the buyer was shown, if the client sent one
	ExpectedTotal *money.Money
}

// OrderOutput wraps a single order
type OrderOutput struct {
	Order *domain.Order
	// StockPending is set when a delivery committed but the stock
	// decrement has to be reconciled later
	StockPending bool
}

// PlaceOrder creates a Pending order. The coupon is validated again
// regardless of any earlier quote.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderOutput, error) {
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	cart, coupon, err := uc.priceCart(ctx, input.Items, input.CouponCode)
	if err != nil {
		return nil, err
	}

	// Create domain entity with validation
	order, err := domain.NewOrder(input.UserID, cart, input.Address, method, coupon, uc.now())
	if err != nil {
		return nil, err
	}

	if input.ExpectedTotal != nil && *input.ExpectedTotal != order.TotalAmount {
		return nil, domain.NewPriceChanged(*input.ExpectedTotal, order.TotalAmount)
	}

	if err := uc.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.RecordOrderPlaced(string(order.PaymentMethod))

	err = uc.publish(ctx, func(ctx context.Context) error {
		return uc.publisher.PublishOrderPlaced(ctx, order)
	})
	if err != nil {
		uc.log.WithContext(ctx).Error("failed to publish order placed event",
			zap.Error(err),
			zap.String("order_id", order.ID),
		)
	}

	uc.log.WithContext(ctx).Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.Stringer("total", order.TotalAmount),
	)

	return &OrderOutput{Order: order}, nil
}

// publish sends an event under its own deadline. The request being
// cancelled does not abort it, and a stalled broker never holds up the
// caller past publishTimeout.
func (uc *OrderUseCase) publish(ctx context.Context, send func(ctx context.Context) error) error {
	if uc.publisher == nil {
		return nil
	}
	return deadline.Run(context.WithoutCancel(ctx), uc.publishTimeout, "event broker", send)
}

// priceCart builds a cart from catalog prices and validates the coupon
func (uc *OrderUseCase) priceCart(ctx context.Context, items []ItemInput, couponCode string) (*domain.Cart, *coupondomain.Coupon, error) {
	if len(items) == 0 {
		return nil, nil, domain.ErrCartEmpty
	}

	cart := &domain.Cart{}
	for _, item := range items {
		if item.ProductID == "" {
			return nil, nil, domain.ErrProductIDRequired
		}
		if item.Quantity < 1 || item.Quantity > domain.MaxLineQuantity {
			return nil, nil, domain.ErrQuantityInvalid
		}

		product, err := uc.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return nil, nil, domain.NewProductUnavailable(item.ProductID)
			}
			return nil, nil, err
		}

		if err := cart.Add(domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		}); err != nil {
			return nil, nil, err
		}
	}

	if couponCode == "" {
		return cart, nil, nil
	}

	today := coupondomain.DateOf(uc.now(), uc.loc)
	coupon, err := coupondomain.Validate(ctx, uc.coupons, couponCode, cart.Subtotal(), today)
	if err != nil {
		if reason := errors.ReasonOf(err); reason != "" {
			metrics.RecordCouponRejection(reason)
		}
		return nil, nil, err
	}
	return cart, coupon, nil
}

// GetOrderInput represents the input for getting an order
type GetOrderInput struct {
	ID     string
	UserID string
	Admin  bool
}

// GetOrder retrieves an order visible to the caller. Other users' orders
// are reported as not found.
func (uc *OrderUseCase) GetOrder(ctx context.Context, input GetOrderInput) (*OrderOutput, error) {
	order, err := uc.visibleOrder(ctx, input.ID, input.UserID, input.Admin)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Order: order}, nil
}

// ListMyOrders returns the caller's orders, newest first
func (uc *OrderUseCase) ListMyOrders(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	return uc.repo.List(ctx, ports.OrderFilter{UserID: userID, Limit: limit, Offset: offset})
}

// ListOrders returns orders for the admin console
func (uc *OrderUseCase) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	return uc.repo.List(ctx, filter)
}

func (uc *OrderUseCase) visibleOrder(ctx context.Context, id, userID string, admin bool) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && !order.OwnedBy(userID) {
		return nil, domain.NewOrderNotFound(id)
	}
	return order, nil
}

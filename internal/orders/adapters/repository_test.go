package adapters

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/db"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/money"
)

func newRepo(t *testing.T) *GormOrderRepository {
	t.Helper()
	conn, err := db.NewInMemory()
	require.NoError(t, err)
	repo := NewGormOrderRepository(conn)
	require.NoError(t, repo.Migrate())
	return repo
}

func newOrder(t *testing.T, userID string, method domain.PaymentMethod, placedAt time.Time) *domain.Order {
	t.Helper()
	cart, err := domain.NewCart(
		domain.CartLine{ProductID: "kumkum", Name: "Kumkum 100g", UnitPrice: money.FromPaise(3500), Quantity: 2},
		domain.CartLine{ProductID: "camphor", Name: "Camphor tablets", UnitPrice: money.FromRupees(60), Quantity: 1},
	)
	require.NoError(t, err)
	order, err := domain.NewOrder(userID, cart, domain.Address{
		Name: "Meena S", Phone: "9000000001", Line1: "22 Car Street", City: "Udupi", State: "Karnataka", Pincode: "576101",
	}, method, nil, placedAt)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	order := newOrder(t, "user-1", domain.PaymentMethodUPI, time.Now().UTC().Truncate(time.Second))
	order.Coupon = &domain.CouponSnapshot{Code: "POOJA5", Kind: "percent", Amount: "5", MinOrderAmount: money.FromRupees(500), Expiry: "2030-12-31"}

	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalAmount, got.TotalAmount)
	assert.Equal(t, order.ShippingAddress, got.ShippingAddress)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "kumkum", got.Lines[0].ProductID)
	assert.Equal(t, money.FromPaise(3500), got.Lines[0].UnitPrice)
	require.NotNil(t, got.Coupon)
	assert.Equal(t, *order.Coupon, *got.Coupon)
	assert.Nil(t, got.StockAppliedAt)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestRepository_CompareAndSetStatus(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	order := newOrder(t, "user-1", domain.PaymentMethodCOD, time.Now())
	require.NoError(t, repo.Create(ctx, order))

	ok, err := repo.CompareAndSetStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSetStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok, "stale expected status must not win")

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, got.Status)
}

func TestRepository_CompareAndSetStatus_SingleWinner(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	order := newOrder(t, "user-1", domain.PaymentMethodCOD, time.Now())
	require.NoError(t, repo.Create(ctx, order))
	_, err := repo.CompareAndSetStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusShipped)
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CompareAndSetStatus(ctx, order.ID, domain.OrderStatusShipped, domain.OrderStatusDelivered)
			if err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestRepository_CompareAndSetPaymentStatus(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	order := newOrder(t, "user-1", domain.PaymentMethodUPI, time.Now())
	require.NoError(t, repo.Create(ctx, order))

	utr := "UTR12345678"
	ok, err := repo.CompareAndSetPaymentStatus(ctx, order.ID, domain.PaymentStatusPending, domain.PaymentStatusUnderReview, &utr)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnderReview, got.PaymentStatus)
	assert.Equal(t, utr, got.UPITransactionID)

	// A cancelled order no longer takes payment changes.
	_, err = repo.CompareAndSetStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled)
	require.NoError(t, err)
	ok, err = repo.CompareAndSetPaymentStatus(ctx, order.ID, domain.PaymentStatusUnderReview, domain.PaymentStatusPaid, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_StockPending(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	order := newOrder(t, "user-1", domain.PaymentMethodCOD, time.Now())
	require.NoError(t, repo.Create(ctx, order))
	_, _ = repo.CompareAndSetStatus(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusShipped)
	_, _ = repo.CompareAndSetStatus(ctx, order.ID, domain.OrderStatusShipped, domain.OrderStatusDelivered)

	pending, err := repo.ListStockPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Len(t, pending[0].Lines, 2)

	require.NoError(t, repo.MarkStockApplied(ctx, order.ID, time.Now()))

	pending, err = repo.ListStockPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRepository_ListFilters(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

	first := newOrder(t, "user-1", domain.PaymentMethodCOD, base)
	second := newOrder(t, "user-1", domain.PaymentMethodUPI, base.Add(24*time.Hour))
	other := newOrder(t, "user-2", domain.PaymentMethodCOD, base.Add(48*time.Hour))
	for _, o := range []*domain.Order{first, second, other} {
		require.NoError(t, repo.Create(ctx, o))
	}
	_, _ = repo.CompareAndSetStatus(ctx, other.ID, domain.OrderStatusPending, domain.OrderStatusCancelled)

	mine, err := repo.List(ctx, ports.OrderFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID, "newest first")

	cancelled, err := repo.List(ctx, ports.OrderFilter{Status: domain.OrderStatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, other.ID, cancelled[0].ID)

	window, err := repo.List(ctx, ports.OrderFilter{From: base.Add(time.Hour), To: base.Add(36 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, second.ID, window[0].ID)

	page, err := repo.List(ctx, ports.OrderFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)
}

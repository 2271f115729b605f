package application

import (
	"context"
	"time"

	coupondomain "pooja-supplies/internal/coupons/domain"
	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/internal/orders/ports"
	"pooja-supplies/pkg/deadline"
)

// timedOrders bounds every order store call
type timedOrders struct {
	next ports.OrderRepository
	d    time.Duration
}

func (r timedOrders) Create(ctx context.Context, order *domain.Order) error {
	return deadline.Run(ctx, r.d, "order store", func(ctx context.Context) error {
		return r.next.Create(ctx, order)
	})
}

func (r timedOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return deadline.Call(ctx, r.d, "order store", func(ctx context.Context) (*domain.Order, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r timedOrders) List(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	return deadline.Call(ctx, r.d, "order store", func(ctx context.Context) ([]*domain.Order, error) {
		return r.next.List(ctx, filter)
	})
}

func (r timedOrders) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	return deadline.Call(ctx, r.d, "order store", func(ctx context.Context) (bool, error) {
		return r.next.CompareAndSetStatus(ctx, id, from, to)
	})
}

func (r timedOrders) CompareAndSetPaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus, utr *string) (bool, error) {
	return deadline.Call(ctx, r.d, "order store", func(ctx context.Context) (bool, error) {
		return r.next.CompareAndSetPaymentStatus(ctx, id, from, to, utr)
	})
}

func (r timedOrders) MarkStockApplied(ctx context.Context, id string, at time.Time) error {
	return deadline.Run(ctx, r.d, "order store", func(ctx context.Context) error {
		return r.next.MarkStockApplied(ctx, id, at)
	})
}

func (r timedOrders) ListStockPending(ctx context.Context, limit int) ([]*domain.Order, error) {
	return deadline.Call(ctx, r.d, "order store", func(ctx context.Context) ([]*domain.Order, error) {
		return r.next.ListStockPending(ctx, limit)
	})
}

// timedCoupons bounds coupon lookups
type timedCoupons struct {
	next ports.CouponLookup
	d    time.Duration
}

func (l timedCoupons) FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error) {
	return deadline.Call(ctx, l.d, "coupon store", func(ctx context.Context) (*coupondomain.Coupon, error) {
		return l.next.FindByCode(ctx, code)
	})
}

// timedCatalog bounds inventory calls
type timedCatalog struct {
	next ports.CatalogClient
	d    time.Duration
}

func (c timedCatalog) GetProduct(ctx context.Context, productID string) (*ports.ProductInfo, error) {
	return deadline.Call(ctx, c.d, "inventory store", func(ctx context.Context) (*ports.ProductInfo, error) {
		return c.next.GetProduct(ctx, productID)
	})
}

func (c timedCatalog) DecrementStock(ctx context.Context, productID string, qty int, reference string) (int, error) {
	return deadline.Call(ctx, c.d, "inventory store", func(ctx context.Context) (int, error) {
		return c.next.DecrementStock(ctx, productID, qty, reference)
	})
}

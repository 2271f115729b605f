package application

import (
	"context"
	"time"

	"pooja-supplies/internal/coupons/domain"
	"pooja-supplies/internal/coupons/ports"
	"pooja-supplies/pkg/deadline"
)

// WithStoreTimeout bounds every coupon store call by d. An overrunning
// call fails with STORE_UNAVAILABLE.
func (uc *CouponUseCase) WithStoreTimeout(d time.Duration) *CouponUseCase {
	if d > 0 {
		uc.repo = timedCoupons{next: uc.repo, d: d}
	}
	return uc
}

type timedCoupons struct {
	next ports.CouponRepository
	d    time.Duration
}

func (r timedCoupons) Create(ctx context.Context, coupon *domain.Coupon) error {
	return deadline.Run(ctx, r.d, "coupon store", func(ctx context.Context) error {
		return r.next.Create(ctx, coupon)
	})
}

func (r timedCoupons) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	return deadline.Call(ctx, r.d, "coupon store", func(ctx context.Context) (*domain.Coupon, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r timedCoupons) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return deadline.Call(ctx, r.d, "coupon store", func(ctx context.Context) (*domain.Coupon, error) {
		return r.next.FindByCode(ctx, code)
	})
}

func (r timedCoupons) List(ctx context.Context) ([]*domain.Coupon, error) {
	return deadline.Call(ctx, r.d, "coupon store", func(ctx context.Context) ([]*domain.Coupon, error) {
		return r.next.List(ctx)
	})
}

func (r timedCoupons) Update(ctx context.Context, coupon *domain.Coupon) error {
	return deadline.Run(ctx, r.d, "coupon store", func(ctx context.Context) error {
		return r.next.Update(ctx, coupon)
	})
}

func (r timedCoupons) Delete(ctx context.Context, id string) error {
	return deadline.Run(ctx, r.d, "coupon store", func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	})
}

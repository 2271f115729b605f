package ports

import (
	"context"

	"pooja-supplies/internal/coupons/domain"
)

// CouponRepository defines the interface for coupon persistence
type CouponRepository interface {
	// Create creates a new coupon; a duplicate code is a conflict
	Create(ctx context.Context, coupon *domain.Coupon) error

	// GetByID retrieves a coupon by ID
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)

	// FindByCode retrieves a coupon by normalized code, (nil, nil) if absent
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)

	// List returns all coupons, newest first
	List(ctx context.Context) ([]*domain.Coupon, error)

	// Update updates an existing coupon
	Update(ctx context.Context, coupon *domain.Coupon) error

	// Delete deletes a coupon by ID
	Delete(ctx context.Context, id string) error
}

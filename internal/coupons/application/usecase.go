package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pooja-supplies/internal/coupons/domain"
	"pooja-supplies/internal/coupons/ports"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/metrics"
	"pooja-supplies/pkg/money"
)

// CouponUseCase handles coupon administration and validation
type CouponUseCase struct {
	repo ports.CouponRepository
	loc  *time.Location
	now  func() time.Time
	log  *logger.Logger
}

// NewCouponUseCase creates a new coupon use case. loc is the store time
// zone that decides which calendar day it is.
func NewCouponUseCase(repo ports.CouponRepository, loc *time.Location, log *logger.Logger) *CouponUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &CouponUseCase{
		repo: repo,
		loc:  loc,
		now:  time.Now,
		log:  log,
	}
}

// CouponInput holds the editable coupon fields
type CouponInput struct {
	Code           string
	Kind           domain.Kind
	Amount         decimal.Decimal
	MinOrderAmount money.Money
	Expiry         time.Time
}

// CouponOutput wraps a single coupon
type CouponOutput struct {
	Coupon *domain.Coupon
}

// CreateCoupon creates a new coupon
func (uc *CouponUseCase) CreateCoupon(ctx context.Context, input CouponInput) (*CouponOutput, error) {
	coupon, err := domain.NewCoupon(input.Code, input.Kind, input.Amount, input.MinOrderAmount, input.Expiry)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByCode(ctx, coupon.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCodeExists
	}

	if err := uc.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("coupon created",
		zap.String("coupon_id", coupon.ID),
		zap.String("code", coupon.Code),
		zap.String("kind", string(coupon.Kind)),
	)

	return &CouponOutput{Coupon: coupon}, nil
}

// UpdateCouponInput identifies the coupon to update
type UpdateCouponInput struct {
	ID string
	CouponInput
}

// UpdateCoupon replaces the fields of an existing coupon
func (uc *CouponUseCase) UpdateCoupon(ctx context.Context, input UpdateCouponInput) (*CouponOutput, error) {
	coupon, err := uc.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := coupon.Update(input.Code, input.Kind, input.Amount, input.MinOrderAmount, input.Expiry); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByCode(ctx, coupon.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != coupon.ID {
		return nil, domain.ErrCodeExists
	}

	if err := uc.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("coupon updated",
		zap.String("coupon_id", coupon.ID),
		zap.String("code", coupon.Code),
	)

	return &CouponOutput{Coupon: coupon}, nil
}

// DeleteCoupon deletes a coupon
func (uc *CouponUseCase) DeleteCoupon(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.WithContext(ctx).Info("coupon deleted", zap.String("coupon_id", id))
	return nil
}

// ListCoupons returns every coupon
func (uc *CouponUseCase) ListCoupons(ctx context.Context) ([]*domain.Coupon, error) {
	return uc.repo.List(ctx)
}

// ValidateCouponInput is a code checked against a cart subtotal
type ValidateCouponInput struct {
	Code     string
	Subtotal money.Money
}

// ValidateCoupon checks a code for the storefront's "apply coupon" action
func (uc *CouponUseCase) ValidateCoupon(ctx context.Context, input ValidateCouponInput) (*CouponOutput, error) {
	today := domain.DateOf(uc.now(), uc.loc)

	coupon, err := domain.Validate(ctx, uc.repo, input.Code, input.Subtotal, today)
	if err != nil {
		if reason := errors.ReasonOf(err); reason != "" {
			metrics.RecordCouponRejection(reason)
		}
		return nil, err
	}

	return &CouponOutput{Coupon: coupon}, nil
}

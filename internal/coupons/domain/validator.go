package domain

import (
	"context"
	"time"

	"pooja-supplies/pkg/money"
)

// Lookup finds a coupon by its normalized code. A missing coupon is
// reported as (nil, nil).
type Lookup interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// Validate resolves code through lookup and checks it against the cart
// subtotal on the given store-local date. Failures are reported in a fixed
// order: NOT_FOUND, then EXPIRED, then BELOW_MINIMUM.
func Validate(ctx context.Context, lookup Lookup, code string, subtotal money.Money, today time.Time) (*Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, rejected(ReasonNotFound, "coupon code is invalid", nil)
	}

	coupon, err := lookup.FindByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, rejected(ReasonNotFound, "coupon code is invalid", map[string]interface{}{
			"code": normalized,
		})
	}

	if err := CheckEligibility(coupon, subtotal, today); err != nil {
		return nil, err
	}
	return coupon, nil
}

// CheckEligibility applies the expiry and minimum order rules to a known coupon
func CheckEligibility(coupon *Coupon, subtotal money.Money, today time.Time) error {
	if coupon.ExpiredOn(today) {
		return rejected(ReasonExpired, "coupon has expired", map[string]interface{}{
			"code":   coupon.Code,
			"expiry": coupon.Expiry.Format(time.DateOnly),
		})
	}
	if subtotal < coupon.MinOrderAmount {
		return rejected(ReasonBelowMinimum, "order total is below the coupon minimum", map[string]interface{}{
			"code":             coupon.Code,
			"min_order_amount": coupon.MinOrderAmount,
			"subtotal":         subtotal,
		})
	}
	return nil
}

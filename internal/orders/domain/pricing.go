package domain

import (
	coupondomain "pooja-supplies/internal/coupons/domain"
	"pooja-supplies/pkg/money"
)

// DiscountResult is the priced cart
type DiscountResult struct {
	Subtotal   money.Money `json:"subtotal"`
	Discount   money.Money `json:"discount"`
	FinalTotal money.Money `json:"final_total"`
}

// ComputeTotal prices a cart with an optional coupon. Percent discounts are
// rounded half-up to the paisa and no discount ever exceeds the subtotal.
func ComputeTotal(cart *Cart, coupon *coupondomain.Coupon) DiscountResult {
	subtotal := cart.Subtotal()
	if coupon == nil {
		return DiscountResult{Subtotal: subtotal, FinalTotal: subtotal}
	}

	var discount money.Money
	switch coupon.Kind {
	case coupondomain.KindPercent:
		discount = subtotal.Percent(coupon.Amount)
	case coupondomain.KindFlat:
		discount = coupon.FlatAmount()
	}
	discount = money.Min(discount, subtotal)

	return DiscountResult{
		Subtotal:   subtotal,
		Discount:   discount,
		FinalTotal: subtotal.Sub(discount),
	}
}

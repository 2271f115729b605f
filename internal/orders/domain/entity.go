package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	coupondomain "pooja-supplies/internal/coupons/domain"
	"pooja-supplies/pkg/money"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// IsTerminal reports whether no further status change is allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ParseOrderStatus accepts a status name in any case
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrStatusInvalid
}

// PaymentStatus is tracked independently of OrderStatus
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "Pending"
	PaymentStatusUnderReview PaymentStatus = "UnderReview"
	PaymentStatusPaid        PaymentStatus = "Paid"
)

// PaymentMethod is how the buyer pays
type PaymentMethod string

const (
	PaymentMethodCOD PaymentMethod = "COD"
	PaymentMethodUPI PaymentMethod = "UPI"
)

// ParsePaymentMethod accepts a payment method in any case
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(PaymentMethodCOD):
		return PaymentMethodCOD, nil
	case string(PaymentMethodUPI):
		return PaymentMethodUPI, nil
	}
	return "", ErrPaymentMethodInvalid
}

var (
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern   = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// Address is the shipping address captured at checkout
type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Validate checks the address fields
func (a Address) Validate() error {
	missing := []string{}
	for _, f := range []struct{ name, value string }{
		{"name", a.Name}, {"line1", a.Line1}, {"city", a.City}, {"state", a.State},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return newAddressError("shipping address is incomplete", map[string]interface{}{"missing": missing})
	}
	if !phonePattern.MatchString(a.Phone) {
		return newAddressError("phone must be a 10 digit mobile number", nil)
	}
	if !pincodePattern.MatchString(a.Pincode) {
		return newAddressError("pincode must be 6 digits", nil)
	}
	return nil
}

// CouponSnapshot freezes the coupon an order was placed with
type CouponSnapshot struct {
	Code           string            `json:"code"`
	Kind           coupondomain.Kind `json:"type"`
	Amount         string            `json:"amount"`
	MinOrderAmount money.Money       `json:"min_order_amount"`
	// Expiry is the last valid calendar day, YYYY-MM-DD
	Expiry string `json:"expiry"`
}

// Order represents the order domain entity.
// Subtotal, Discount, TotalAmount and Coupon are fixed at placement.
type Order struct {
	ID               string
	UserID           string
	Lines            []CartLine
	ShippingAddress  Address
	PaymentMethod    PaymentMethod
	Coupon           *CouponSnapshot
	Subtotal         money.Money
	Discount         money.Money
	TotalAmount      money.Money
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	UPITransactionID string
	StockAppliedAt   *time.Time
	PlacedAt         time.Time
	UpdatedAt        time.Time
}

// NewOrder creates a Pending order from a priced cart
func NewOrder(userID string, cart *Cart, address Address, method PaymentMethod, coupon *coupondomain.Coupon, now time.Time) (*Order, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrCartEmpty
	}
	if method != PaymentMethodCOD && method != PaymentMethodUPI {
		return nil, ErrPaymentMethodInvalid
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	priced := ComputeTotal(cart, coupon)
	order := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Lines:           cart.Lines(),
		ShippingAddress: address,
		PaymentMethod:   method,
		Subtotal:        priced.Subtotal,
		Discount:        priced.Discount,
		TotalAmount:     priced.FinalTotal,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusPending,
		PlacedAt:        now,
		UpdatedAt:       now,
	}
	if coupon != nil {
		order.Coupon = &CouponSnapshot{
			Code:           coupon.Code,
			Kind:           coupon.Kind,
			Amount:         coupon.Amount.String(),
			MinOrderAmount: coupon.MinOrderAmount,
			Expiry:         coupon.Expiry.Format(time.DateOnly),
		}
	}
	return order, nil
}

// StockApplied reports whether the delivery stock decrement has completed
func (o *Order) StockApplied() bool {
	return o.StockAppliedAt != nil
}

// OwnedBy reports whether userID placed the order
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

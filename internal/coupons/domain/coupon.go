package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pooja-supplies/pkg/money"
)

// Kind is how a coupon discounts the cart
type Kind string

const (
	KindPercent Kind = "percent"
	KindFlat    Kind = "flat"
)

// CodePattern is the accepted shape of a normalized coupon code
var CodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

var hundred = decimal.NewFromInt(100)

// Coupon is a discount code. Expiry is a calendar date and the coupon is
// still valid on that date.
type Coupon struct {
	ID             string
	Code           string
	Kind           Kind
	Amount         decimal.Decimal
	MinOrderAmount money.Money
	Expiry         time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizeCode makes codes case-insensitive
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DateOf returns the calendar date of t in loc, as midnight UTC
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "2006-01-02" calendar date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// NewCoupon creates a new coupon with validation
func NewCoupon(code string, kind Kind, amount decimal.Decimal, minOrder money.Money, expiry time.Time) (*Coupon, error) {
	now := time.Now()
	coupon := &Coupon{
		ID:             uuid.NewString(),
		Code:           NormalizeCode(code),
		Kind:           kind,
		Amount:         amount,
		MinOrderAmount: minOrder,
		Expiry:         DateOf(expiry, time.UTC),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := coupon.Validate(); err != nil {
		return nil, err
	}

	return coupon, nil
}

// Validate validates the coupon entity
func (c *Coupon) Validate() error {
	if c.Code == "" {
		return ErrCodeRequired
	}
	if !CodePattern.MatchString(c.Code) {
		return ErrCodeInvalid
	}
	switch c.Kind {
	case KindPercent:
		if !c.Amount.IsPositive() || c.Amount.GreaterThan(hundred) {
			return ErrPercentRange
		}
	case KindFlat:
		if !c.Amount.IsPositive() {
			return ErrAmountNotPositive
		}
		if _, err := money.FromDecimal(c.Amount); err != nil {
			return ErrAmountPrecision
		}
	default:
		return ErrKindInvalid
	}
	if c.MinOrderAmount < 0 {
		return ErrMinOrderNegative
	}
	if c.Expiry.IsZero() {
		return ErrExpiryRequired
	}
	return nil
}

// FlatAmount returns the discount of a flat coupon
func (c *Coupon) FlatAmount() money.Money {
	m, _ := money.FromDecimal(c.Amount)
	return m
}

// ExpiredOn reports whether the coupon is no longer valid on the given date
func (c *Coupon) ExpiredOn(today time.Time) bool {
	return DateOf(today, time.UTC).After(c.Expiry)
}

// Update replaces the editable fields and re-validates
func (c *Coupon) Update(code string, kind Kind, amount decimal.Decimal, minOrder money.Money, expiry time.Time) error {
	updated := *c
	updated.Code = NormalizeCode(code)
	updated.Kind = kind
	updated.Amount = amount
	updated.MinOrderAmount = minOrder
	updated.Expiry = DateOf(expiry, time.UTC)
	if err := updated.Validate(); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now()
	*c = updated
	return nil
}

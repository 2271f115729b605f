// Package money holds rupee amounts as integer paise.
//
// Arithmetic stays in int64; shopspring/decimal is only used to parse and
// format amounts at the edges and for percentage math.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is an amount in paise (1/100 rupee).
type Money int64

// Zero is the zero amount
const Zero Money = 0

// ErrOverflow is returned when a sum or product leaves the int64 range
var ErrOverflow = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxPaise = decimal.NewFromInt(math.MaxInt64)
)

// FromPaise returns an amount of the given number of paise
func FromPaise(p int64) Money {
	return Money(p)
}

// FromRupees returns an amount of whole rupees
func FromRupees(r int64) Money {
	return Money(r * 100)
}

// FromDecimal converts a rupee decimal into Money.
// Negative amounts and fractions of a paisa are rejected.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %s", d.String())
	}
	paise := d.Mul(hundred)
	if !paise.Equal(paise.Truncate(0)) {
		return 0, fmt.Errorf("amount has more than two decimal places: %s", d.String())
	}
	if paise.GreaterThan(maxPaise) {
		return 0, fmt.Errorf("amount %s: %w", d.String(), ErrOverflow)
	}
	return Money(paise.IntPart()), nil
}

// Parse parses a rupee amount such as "199.50"
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// Paise returns the amount in paise
func (m Money) Paise() int64 {
	return int64(m)
}

// Decimal returns the amount in rupees
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount in rupees with two decimals
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m + o
func (m Money) Add(o Money) (Money, error) {
	if (o > 0 && m > math.MaxInt64-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, ErrOverflow
	}
	return m + o, nil
}

// Sub returns m - o floored at zero
func (m Money) Sub(o Money) Money {
	if o >= m {
		return 0
	}
	return m - o
}

// Times returns m multiplied by a non-negative quantity
func (m Money) Times(qty int) (Money, error) {
	if qty < 0 {
		return 0, fmt.Errorf("negative quantity %d", qty)
	}
	if m == 0 || qty == 0 {
		return 0, nil
	}
	q := int64(qty)
	if m > 0 && int64(m) > math.MaxInt64/q || m < 0 && int64(m) < math.MinInt64/q {
		return 0, ErrOverflow
	}
	return m * Money(q), nil
}

// Percent returns pct percent of m, rounded half-up to the nearest paisa
func (m Money) Percent(pct decimal.Decimal) Money {
	// Round is half away from zero, which is half-up for non-negative amounts.
	p := decimal.NewFromInt(int64(m)).Mul(pct).Div(hundred).Round(0)
	return Money(p.IntPart())
}

// Min returns the smaller of a and b
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// MarshalJSON renders the amount as a JSON number in rupees
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a rupee amount as a JSON number or string
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

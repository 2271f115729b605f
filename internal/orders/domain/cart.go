package domain

import (
	"pooja-supplies/pkg/money"
)

// CartLine is one product in a cart. UnitPrice is the price seen when the
// product was added.
type CartLine struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"unit_price"`
	Quantity  int         `json:"quantity"`
}

// MaxLineQuantity caps the quantity of a single product in a cart
const MaxLineQuantity = 1000

// Extension returns UnitPrice × Quantity. A Cart only holds lines whose
// extension fits in Money.
func (l CartLine) Extension() money.Money {
	ext, _ := l.UnitPrice.Times(l.Quantity)
	return ext
}

// Cart is an ordered list of lines, at most one per product
type Cart struct {
	lines    []CartLine
	subtotal money.Money
}

// NewCart builds a cart from lines, merging repeated products
func NewCart(lines ...CartLine) (*Cart, error) {
	cart := &Cart{}
	for _, l := range lines {
		if err := cart.Add(l); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

// Add puts a line in the cart. A product already in the cart keeps its
// original price snapshot and gains the quantity.
func (c *Cart) Add(line CartLine) error {
	if line.ProductID == "" {
		return ErrProductIDRequired
	}
	if line.Quantity < 1 || line.Quantity > MaxLineQuantity {
		return ErrQuantityInvalid
	}
	if line.UnitPrice < 0 {
		return ErrPriceNegative
	}

	lines := c.Lines()
	if i := c.index(line.ProductID); i >= 0 {
		lines[i].Quantity += line.Quantity
		if lines[i].Quantity > MaxLineQuantity {
			return ErrQuantityInvalid
		}
	} else {
		lines = append(lines, line)
	}
	return c.replace(lines)
}

// SetQuantity changes a line's quantity; anything below 1 removes the line
func (c *Cart) SetQuantity(productID string, qty int) error {
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	if qty < 1 {
		c.Remove(productID)
		return nil
	}
	if qty > MaxLineQuantity {
		return ErrQuantityInvalid
	}

	lines := c.Lines()
	lines[i].Quantity = qty
	return c.replace(lines)
}

// Remove drops a product from the cart
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		lines := append(c.Lines()[:i], c.lines[i+1:]...)
		_ = c.replace(lines)
	}
}

// replace swaps in lines after checking their total fits in Money
func (c *Cart) replace(lines []CartLine) error {
	var total money.Money
	for _, l := range lines {
		ext, err := l.UnitPrice.Times(l.Quantity)
		if err != nil {
			return ErrAmountTooLarge
		}
		if total, err = total.Add(ext); err != nil {
			return ErrAmountTooLarge
		}
	}
	c.lines = lines
	c.subtotal = total
	return nil
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Subtotal is the sum of line extensions
func (c *Cart) Subtotal() money.Money {
	return c.subtotal
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

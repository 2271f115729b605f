package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"pooja-supplies/pkg/money"
)

// MaxImages is how many image URLs a product may carry
const MaxImages = 8

// Product is an item sold in the store
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       money.Money
	Stock       int
	Images      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFields holds the editable product attributes
type ProductFields struct {
	Name        string
	Description string
	Category    string
	Price       money.Money
	Stock       int
	Images      []string
}

// NewProduct creates a new product with validation
func NewProduct(fields ProductFields) (*Product, error) {
	now := time.Now()
	p := &Product{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.apply(fields); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable attributes
func (p *Product) Update(fields ProductFields) error {
	if err := p.apply(fields); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) apply(f ProductFields) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return ErrNameRequired
	}
	if f.Price <= 0 {
		return ErrPriceNotPositive
	}
	if f.Stock < 0 {
		return ErrStockNegative
	}
	images := make([]string, 0, len(f.Images))
	for _, img := range f.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) > MaxImages {
		return ErrTooManyImages
	}

	p.Name = name
	p.Description = strings.TrimSpace(f.Description)
	p.Category = strings.ToLower(strings.TrimSpace(f.Category))
	p.Price = f.Price
	p.Stock = f.Stock
	p.Images = images
	return nil
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// FlooredDecrement returns stock after removing qty, never below zero
func FlooredDecrement(stock, qty int) int {
	return max(stock-qty, 0)
}

// WishlistItem is a product saved by a user
type WishlistItem struct {
	UserID    string
	ProductID string
	AddedAt   time.Time
}

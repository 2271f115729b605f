package ports

import (
	"context"

	"pooja-supplies/internal/catalog/domain"
)

// ProductFilter narrows a product listing
type ProductFilter struct {
	Category string
	// Search matches the name case-insensitively
	Search      string
	InStockOnly bool
	Limit       int
	Offset      int
}

// StockResult is the outcome of a stock decrement
type StockResult struct {
	Stock int
	// Applied is false when the reference was already recorded for the product
	Applied bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter, newest first
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)

	// Update updates an existing product
	Update(ctx context.Context, product *domain.Product) error

	// Delete deletes a product by ID
	Delete(ctx context.Context, id string) error

	// SetStock overwrites the stock level
	SetStock(ctx context.Context, id string, stock int) error

	// DecrementStock removes qty units floored at zero. The same reference is
	// applied at most once per product.
	DecrementStock(ctx context.Context, id string, qty int, reference string) (StockResult, error)
}

// WishlistRepository defines the interface for wishlist persistence
type WishlistRepository interface {
	// Add saves a product for a user; adding it twice is a no-op
	Add(ctx context.Context, item domain.WishlistItem) error

	// Remove deletes a saved product; removing a missing one is a no-op
	Remove(ctx context.Context, userID, productID string) error

	// ProductIDs returns the user's saved products, most recent first
	ProductIDs(ctx context.Context, userID string) ([]string, error)
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	// Upsert saves a review, replacing the user's earlier review of the
	// same product. CreatedAt of the first review is kept.
	Upsert(ctx context.Context, review *domain.Review) error

	// ListByProduct returns a product's reviews, newest first
	ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error)
}

// ProductCache is a read-through cache of single products
type ProductCache interface {
	// Get returns (nil, nil) on a miss
	Get(ctx context.Context, id string) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Invalidate(ctx context.Context, id string) error
}

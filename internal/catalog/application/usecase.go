package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pooja-supplies/internal/catalog/domain"
	"pooja-supplies/internal/catalog/ports"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/metrics"
)

// CatalogUseCase handles products, stock, wishlists and reviews
type CatalogUseCase struct {
	products ports.ProductRepository
	wishlist ports.WishlistRepository
	reviews  ports.ReviewRepository
	cache    ports.ProductCache
	log      *logger.Logger
	now      func() time.Time
}

// NewCatalogUseCase creates a new catalog use case. cache may be nil.
func NewCatalogUseCase(products ports.ProductRepository, wishlist ports.WishlistRepository, reviews ports.ReviewRepository, cache ports.ProductCache, log *logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		products: products,
		wishlist: wishlist,
		reviews:  reviews,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// ProductOutput wraps a single product
type ProductOutput struct {
	Product *domain.Product
}

// CreateProduct creates a new product
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, fields domain.ProductFields) (*ProductOutput, error) {
	product, err := domain.NewProduct(fields)
	if err != nil {
		return nil, err
	}

	if err := uc.products.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("stock", product.Stock),
	)
	return &ProductOutput{Product: product}, nil
}

// UpdateProductInput identifies the product to update
type UpdateProductInput struct {
	ID string
	domain.ProductFields
}

// UpdateProduct replaces the attributes of a product
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, input UpdateProductInput) (*ProductOutput, error) {
	product, err := uc.products.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	// Stock moves through SetStock and DecrementStock only.
	fields := input.ProductFields
	fields.Stock = product.Stock
	if err := product.Update(fields); err != nil {
		return nil, err
	}
	if err := uc.products.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, product.ID)

	uc.log.WithContext(ctx).Info("product updated", zap.String("product_id", product.ID))
	return &ProductOutput{Product: product}, nil
}

// DeleteProduct deletes a product
func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.products.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx, id)
	uc.log.WithContext(ctx).Info("product deleted", zap.String("product_id", id))
	return nil
}

// GetProduct returns a product, served from the cache when possible
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*ProductOutput, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, id)
		if err != nil {
			uc.log.WithContext(ctx).Warn("product cache read failed", zap.Error(err), zap.String("product_id", id))
		}
		if cached != nil {
			return &ProductOutput{Product: cached}, nil
		}
	}

	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, product); err != nil {
			uc.log.WithContext(ctx).Warn("product cache write failed", zap.Error(err), zap.String("product_id", id))
		}
	}
	return &ProductOutput{Product: product}, nil
}

// ListProducts returns products matching the filter
func (uc *CatalogUseCase) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	return uc.products.List(ctx, filter)
}

// SetStock overwrites the stock of a product from the admin console
func (uc *CatalogUseCase) SetStock(ctx context.Context, id string, stock int) (*ProductOutput, error) {
	if stock < 0 {
		return nil, domain.ErrStockNegative
	}
	if err := uc.products.SetStock(ctx, id, stock); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, id)

	uc.log.WithContext(ctx).Info("stock set",
		zap.String("product_id", id),
		zap.Int("stock", stock),
	)
	return uc.fresh(ctx, id)
}

// DecrementStockInput is a delivery's stock movement
type DecrementStockInput struct {
	ProductID string
	Quantity  int
	// Reference identifies the movement, normally the order ID
	Reference string
}

// DecrementStock removes delivered units. Stock never drops below zero and
// a repeated reference leaves stock unchanged.
func (uc *CatalogUseCase) DecrementStock(ctx context.Context, input DecrementStockInput) (*ports.StockResult, error) {
	if input.Quantity < 1 {
		return nil, domain.ErrQuantityInvalid
	}
	if input.Reference == "" {
		return nil, domain.ErrReferenceMissing
	}

	result, err := uc.products.DecrementStock(ctx, input.ProductID, input.Quantity, input.Reference)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			metrics.RecordStockDecrement(metrics.OutcomeFailed)
		}
		return nil, err
	}
	uc.invalidate(ctx, input.ProductID)

	outcome := metrics.OutcomeApplied
	if !result.Applied {
		outcome = metrics.OutcomeSkipped
	}
	metrics.RecordStockDecrement(outcome)

	uc.log.WithContext(ctx).Info("stock decremented",
		zap.String("product_id", input.ProductID),
		zap.String("reference", input.Reference),
		zap.Int("quantity", input.Quantity),
		zap.Int("stock", result.Stock),
		zap.Bool("applied", result.Applied),
	)
	return &result, nil
}

// AddToWishlist saves a product for a user
func (uc *CatalogUseCase) AddToWishlist(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return domain.ErrUserIDRequired
	}
	if _, err := uc.products.GetByID(ctx, productID); err != nil {
		return err
	}
	return uc.wishlist.Add(ctx, domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		AddedAt:   time.Now(),
	})
}

// RemoveFromWishlist removes a saved product
func (uc *CatalogUseCase) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return domain.ErrUserIDRequired
	}
	return uc.wishlist.Remove(ctx, userID, productID)
}

// Wishlist returns the products a user saved. Products deleted since are
// left out.
func (uc *CatalogUseCase) Wishlist(ctx context.Context, userID string) ([]*domain.Product, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	ids, err := uc.wishlist.ProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		out, err := uc.GetProduct(ctx, id)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		products = append(products, out.Product)
	}
	return products, nil
}

// ReviewInput is a buyer's rating of a product
type ReviewInput struct {
	ProductID string
	UserID    string
	Rating    int
	Comment   string
}

// ReviewsOutput lists a product's reviews
type ReviewsOutput struct {
	Reviews []*domain.Review
	Average float64
}

// AddReview saves the user's review of a product, replacing any earlier
// one, and returns the product's reviews
func (uc *CatalogUseCase) AddReview(ctx context.Context, input ReviewInput) (*ReviewsOutput, error) {
	review, err := domain.NewReview(input.ProductID, input.UserID, input.Rating, input.Comment, uc.now())
	if err != nil {
		return nil, err
	}
	if _, err := uc.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}
	if err := uc.reviews.Upsert(ctx, review); err != nil {
		return nil, err
	}

	uc.log.WithContext(ctx).Info("review saved",
		zap.String("product_id", review.ProductID),
		zap.String("user_id", review.UserID),
		zap.Int("rating", review.Rating),
	)

	return uc.ListReviews(ctx, input.ProductID)
}

// ListReviews returns a product's reviews, newest first
func (uc *CatalogUseCase) ListReviews(ctx context.Context, productID string) (*ReviewsOutput, error) {
	if _, err := uc.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := uc.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ReviewsOutput{Reviews: reviews, Average: domain.AverageRating(reviews)}, nil
}

// fresh reads a product from the store after a write
func (uc *CatalogUseCase) fresh(ctx context.Context, id string) (*ProductOutput, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductOutput{Product: product}, nil
}

func (uc *CatalogUseCase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, id); err != nil {
		uc.log.WithContext(ctx).Warn("product cache invalidation failed", zap.Error(err), zap.String("product_id", id))
	}
}

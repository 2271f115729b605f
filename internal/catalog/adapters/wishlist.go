package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pooja-supplies/internal/catalog/domain"
	apperrors "pooja-supplies/pkg/errors"
)

// WishlistModel is the GORM model for saved products
type WishlistModel struct {
	UserID    string    `gorm:"primaryKey;size:64"`
	ProductID string    `gorm:"primaryKey;size:36"`
	AddedAt   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (WishlistModel) TableName() string {
	return "wishlist_items"
}

// GormWishlistRepository implements WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new wishlist repository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// Migrate runs auto-migration for the wishlist model
func (r *GormWishlistRepository) Migrate() error {
	return r.db.AutoMigrate(&WishlistModel{})
}

// Add saves a product for a user
func (r *GormWishlistRepository) Add(ctx context.Context, item domain.WishlistItem) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&WishlistModel{
		UserID:    item.UserID,
		ProductID: item.ProductID,
		AddedAt:   item.AddedAt,
	}).Error
	if err != nil {
		return apperrors.NewUnavailable("failed to add wishlist item", err)
	}
	return nil
}

// Remove deletes a saved product
func (r *GormWishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&WishlistModel{}).Error
	if err != nil {
		return apperrors.NewUnavailable("failed to remove wishlist item", err)
	}
	return nil
}

// ProductIDs returns the user's saved products, most recent first
func (r *GormWishlistRepository) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&WishlistModel{}).
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, apperrors.NewUnavailable("failed to list wishlist", err)
	}
	return ids, nil
}

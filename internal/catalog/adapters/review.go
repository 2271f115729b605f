package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pooja-supplies/internal/catalog/domain"
	apperrors "pooja-supplies/pkg/errors"
)

// ReviewModel is the GORM model for product reviews
type ReviewModel struct {
	ProductID string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:64"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "product_reviews"
}

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new review repository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Migrate runs auto-migration for the review model
func (r *GormReviewRepository) Migrate() error {
	return r.db.AutoMigrate(&ReviewModel{})
}

// Upsert saves a review keyed by product and user
func (r *GormReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	model := &ReviewModel{
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return apperrors.NewUnavailable("failed to save review", err)
	}
	return nil
}

// ListByProduct returns a product's reviews, newest first
func (r *GormReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	var models []ReviewModel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("updated_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewUnavailable("failed to list reviews", err)
	}

	reviews := make([]*domain.Review, len(models))
	for i, m := range models {
		reviews[i] = &domain.Review{
			ProductID: m.ProductID,
			UserID:    m.UserID,
			Rating:    m.Rating,
			Comment:   m.Comment,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		}
	}
	return reviews, nil
}

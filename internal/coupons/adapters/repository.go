package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pooja-supplies/internal/coupons/domain"
	apperrors "pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/money"
)

// CouponModel is the GORM model for coupons (persistence layer)
type CouponModel struct {
	ID             string      `gorm:"primaryKey;size:36"`
	Code           string      `gorm:"size:32;uniqueIndex;not null"`
	Kind           domain.Kind `gorm:"size:10;not null"`
	Amount         string      `gorm:"size:20;not null"`
	MinOrderAmount money.Money `gorm:"not null;default:0"`
	Expiry         time.Time   `gorm:"not null"`
	CreatedAt      time.Time   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (CouponModel) TableName() string {
	return "coupons"
}

// GormCouponRepository implements CouponRepository using GORM
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new coupon repository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Migrate runs auto-migration for the coupon model
func (r *GormCouponRepository) Migrate() error {
	return r.db.AutoMigrate(&CouponModel{})
}

// Create creates a new coupon
func (r *GormCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	model := toModel(coupon)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCodeExists
		}
		return apperrors.NewUnavailable("failed to create coupon", err)
	}

	coupon.CreatedAt = model.CreatedAt
	coupon.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a coupon by ID
func (r *GormCouponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	var model CouponModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewCouponNotFound(id)
		}
		return nil, apperrors.NewUnavailable("failed to get coupon", result.Error)
	}

	return toDomain(&model)
}

// FindByCode retrieves a coupon by its normalized code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var model CouponModel

	result := r.db.WithContext(ctx).Where("code = ?", domain.NormalizeCode(code)).Limit(1).Find(&model)
	if result.Error != nil {
		return nil, apperrors.NewUnavailable("failed to look up coupon", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return toDomain(&model)
}

// List returns all coupons, newest first
func (r *GormCouponRepository) List(ctx context.Context) ([]*domain.Coupon, error) {
	var models []CouponModel

	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewUnavailable("failed to list coupons", err)
	}

	coupons := make([]*domain.Coupon, 0, len(models))
	for i := range models {
		c, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, nil
}

// Update updates an existing coupon
func (r *GormCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	model := toModel(coupon)

	result := r.db.WithContext(ctx).Model(&CouponModel{}).Where("id = ?", coupon.ID).Updates(map[string]interface{}{
		"code":             model.Code,
		"kind":             model.Kind,
		"amount":           model.Amount,
		"min_order_amount": model.MinOrderAmount,
		"expiry":           model.Expiry,
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.ErrCodeExists
		}
		return apperrors.NewUnavailable("failed to update coupon", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewCouponNotFound(coupon.ID)
	}
	return nil
}

// Delete deletes a coupon by ID
func (r *GormCouponRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&CouponModel{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.NewUnavailable("failed to delete coupon", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewCouponNotFound(id)
	}
	return nil
}

// toModel converts a domain entity to a GORM model
func toModel(c *domain.Coupon) *CouponModel {
	return &CouponModel{
		ID:             c.ID,
		Code:           c.Code,
		Kind:           c.Kind,
		Amount:         c.Amount.String(),
		MinOrderAmount: c.MinOrderAmount,
		Expiry:         c.Expiry,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(m *CouponModel) (*domain.Coupon, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, apperrors.NewInternal("stored coupon amount is corrupt", err)
	}
	return &domain.Coupon{
		ID:             m.ID,
		Code:           m.Code,
		Kind:           m.Kind,
		Amount:         amount,
		MinOrderAmount: m.MinOrderAmount,
		Expiry:         domain.DateOf(m.Expiry, time.UTC),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

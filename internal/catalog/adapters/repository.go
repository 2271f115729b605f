package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pooja-supplies/internal/catalog/domain"
	"pooja-supplies/internal/catalog/ports"
	"pooja-supplies/pkg/db"
	apperrors "pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/money"
)

// ProductModel is the GORM model for products (persistence layer)
type ProductModel struct {
	ID          string      `gorm:"primaryKey;size:36"`
	Name        string      `gorm:"size:200;not null"`
	Description string      `gorm:"type:text"`
	Category    string      `gorm:"size:60;index"`
	Price       money.Money `gorm:"not null"`
	Stock       int         `gorm:"not null;default:0;check:stock >= 0"`
	Images      []string    `gorm:"serializer:json"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// StockMovementModel records an applied decrement so a retried reference
// is not applied twice
type StockMovementModel struct {
	ID        uint      `gorm:"primaryKey"`
	Reference string    `gorm:"size:64;not null;uniqueIndex:idx_movement_ref_product"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_movement_ref_product"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Migrate runs auto-migration for the product and stock movement models
func (r *GormProductRepository) Migrate() error {
	return r.db.AutoMigrate(&ProductModel{}, &StockMovementModel{})
}

// Create creates a new product
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	model := toModel(product)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewConflict("product already exists")
		}
		return apperrors.NewUnavailable("failed to create product", err)
	}

	product.CreatedAt = model.CreatedAt
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a product by ID
func (r *GormProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewProductNotFound(id)
		}
		return nil, apperrors.NewUnavailable("failed to get product", result.Error)
	}

	return toDomain(&model), nil
}

// List returns products matching the filter, newest first
func (r *GormProductRepository) List(ctx context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	query := r.db.WithContext(ctx).Model(&ProductModel{})
	if filter.Category != "" {
		query = query.Where("category = ?", strings.ToLower(filter.Category))
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.InStockOnly {
		query = query.Where("stock > 0")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []ProductModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewUnavailable("failed to list products", err)
	}

	products := make([]*domain.Product, len(models))
	for i := range models {
		products[i] = toDomain(&models[i])
	}
	return products, nil
}

// Update updates an existing product. Stock is written through SetStock
// and DecrementStock only.
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	model := toModel(product)

	result := r.db.WithContext(ctx).Model(&ProductModel{ID: product.ID}).
		Select("name", "description", "category", "price", "images", "updated_at").
		Updates(model)
	if result.Error != nil {
		return apperrors.NewUnavailable("failed to update product", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(product.ID)
	}
	return nil
}

// Delete deletes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.NewUnavailable("failed to delete product", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(id)
	}
	return nil
}

// SetStock overwrites the stock level
func (r *GormProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	result := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stock":      stock,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return apperrors.NewUnavailable("failed to set stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewProductNotFound(id)
	}
	return nil
}

// DecrementStock removes qty units floored at zero in one statement. The
// movement row and the stock update commit together, so a reference that
// already has a movement leaves stock untouched.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id string, qty int, reference string) (ports.StockResult, error) {
	var result ports.StockResult

	err := db.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&ProductModel{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.NewProductNotFound(id)
		}

		movement := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&StockMovementModel{
			Reference: reference,
			ProductID: id,
			Quantity:  qty,
		})
		if movement.Error != nil {
			return movement.Error
		}

		if movement.RowsAffected == 1 {
			update := tx.Model(&ProductModel{}).Where("id = ?", id).Updates(map[string]interface{}{
				"stock":      gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", qty, qty),
				"updated_at": time.Now(),
			})
			if update.Error != nil {
				return update.Error
			}
			result.Applied = true
		}

		return tx.Model(&ProductModel{}).Select("stock").Where("id = ?", id).Row().Scan(&result.Stock)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return ports.StockResult{}, err
		}
		return ports.StockResult{}, apperrors.NewUnavailable("failed to decrement stock", err)
	}
	return result, nil
}

// toModel converts a domain entity to a GORM model
func toModel(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// toDomain converts a GORM model to a domain entity
func toDomain(m *ProductModel) *domain.Product {
	images := m.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Price:       m.Price,
		Stock:       m.Stock,
		Images:      images,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	coupondomain "pooja-supplies/internal/coupons/domain"
	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/internal/orders/ports"
	apperrors "pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/money"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID               string               `gorm:"primaryKey;size:36"`
	UserID           string               `gorm:"size:64;index;not null"`
	Lines            []OrderLineModel     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress  domain.Address       `gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod    domain.PaymentMethod `gorm:"size:8;not null"`
	CouponCode       *string              `gorm:"size:32"`
	CouponKind       string               `gorm:"size:10"`
	CouponAmount     string               `gorm:"size:20"`
	CouponMinOrder   money.Money          `gorm:"not null;default:0"`
	CouponExpiry     string               `gorm:"size:10"`
	Subtotal         money.Money          `gorm:"not null"`
	Discount         money.Money          `gorm:"not null;default:0"`
	TotalAmount      money.Money          `gorm:"not null"`
	Status           domain.OrderStatus   `gorm:"size:16;index;not null"`
	PaymentStatus    domain.PaymentStatus `gorm:"size:16;not null"`
	UPITransactionID string               `gorm:"column:upi_transaction_id;size:30"`
	StockAppliedAt   *time.Time
	PlacedAt         time.Time `gorm:"index;not null"`
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is one product line of an order
type OrderLineModel struct {
	ID        uint        `gorm:"primaryKey"`
	OrderID   string      `gorm:"size:36;index;not null"`
	ProductID string      `gorm:"size:64;not null"`
	Name      string      `gorm:"size:200"`
	UnitPrice money.Money `gorm:"not null"`
	Quantity  int         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Migrate runs auto-migration for the order models
func (r *GormOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderLineModel{})
}

// Create creates a new order with its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model := toModel(order)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewConflict("order already exists")
		}
		return apperrors.NewUnavailable("failed to create order", err)
	}
	return nil
}

// GetByID retrieves an order by ID
func (r *GormOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Lines", orderLines).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewOrderNotFound(id)
		}
		return nil, apperrors.NewUnavailable("failed to get order", result.Error)
	}

	return toDomain(&model), nil
}

// List returns orders matching the filter, newest first
func (r *GormOrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	query := r.db.WithContext(ctx).Model(&OrderModel{}).Preload("Lines", orderLines)

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("placed_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("placed_at < ?", filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var models []OrderModel
	if err := query.Order("placed_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewUnavailable("failed to list orders", err)
	}
	return toDomainList(models), nil
}

// CompareAndSetStatus updates the status only if it is still from
func (r *GormOrderRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, apperrors.NewUnavailable("failed to update order status", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// CompareAndSetPaymentStatus updates the payment status only if it is
// still from and the order has not been cancelled
func (r *GormOrderRepository) CompareAndSetPaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus, utr *string) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": to,
		"updated_at":     time.Now(),
	}
	if utr != nil {
		updates["upi_transaction_id"] = *utr
	}

	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND payment_status = ? AND status <> ?", id, from, domain.OrderStatusCancelled).
		Updates(updates)
	if result.Error != nil {
		return false, apperrors.NewUnavailable("failed to update payment status", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MarkStockApplied stamps the order once its delivery stock decrement finished
func (r *GormOrderRepository) MarkStockApplied(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND stock_applied_at IS NULL", id).
		Update("stock_applied_at", at).Error
	if err != nil {
		return apperrors.NewUnavailable("failed to record stock applied", err)
	}
	return nil
}

// ListStockPending returns Delivered orders still waiting for their stock decrement
func (r *GormOrderRepository) ListStockPending(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := r.db.WithContext(ctx).Preload("Lines", orderLines).
		Where("status = ? AND stock_applied_at IS NULL", domain.OrderStatusDelivered).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []OrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.NewUnavailable("failed to list stock pending orders", err)
	}
	return toDomainList(models), nil
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("order_lines.id ASC")
}

// toModel converts a domain entity to a GORM model
func toModel(o *domain.Order) *OrderModel {
	model := &OrderModel{
		ID:               o.ID,
		UserID:           o.UserID,
		ShippingAddress:  o.ShippingAddress,
		PaymentMethod:    o.PaymentMethod,
		Subtotal:         o.Subtotal,
		Discount:         o.Discount,
		TotalAmount:      o.TotalAmount,
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		UPITransactionID: o.UPITransactionID,
		StockAppliedAt:   o.StockAppliedAt,
		PlacedAt:         o.PlacedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.Coupon != nil {
		code := o.Coupon.Code
		model.CouponCode = &code
		model.CouponKind = string(o.Coupon.Kind)
		model.CouponAmount = o.Coupon.Amount
		model.CouponMinOrder = o.Coupon.MinOrderAmount
		model.CouponExpiry = o.Coupon.Expiry
	}
	for _, l := range o.Lines {
		model.Lines = append(model.Lines, OrderLineModel{
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return model
}

// toDomain converts a GORM model to a domain entity
func toDomain(m *OrderModel) *domain.Order {
	order := &domain.Order{
		ID:               m.ID,
		UserID:           m.UserID,
		ShippingAddress:  m.ShippingAddress,
		PaymentMethod:    m.PaymentMethod,
		Subtotal:         m.Subtotal,
		Discount:         m.Discount,
		TotalAmount:      m.TotalAmount,
		Status:           m.Status,
		PaymentStatus:    m.PaymentStatus,
		UPITransactionID: m.UPITransactionID,
		StockAppliedAt:   m.StockAppliedAt,
		PlacedAt:         m.PlacedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.CouponCode != nil {
		order.Coupon = &domain.CouponSnapshot{
			Code:           *m.CouponCode,
			Kind:           coupondomain.Kind(m.CouponKind),
			Amount:         m.CouponAmount,
			MinOrderAmount: m.CouponMinOrder,
			Expiry:         m.CouponExpiry,
		}
	}
	order.Lines = make([]domain.CartLine, 0, len(m.Lines))
	for _, l := range m.Lines {
		order.Lines = append(order.Lines, domain.CartLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return order
}

func toDomainList(models []OrderModel) []*domain.Order {
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toDomain(&models[i]))
	}
	return orders
}

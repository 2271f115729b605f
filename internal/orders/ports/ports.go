package ports

import (
	"context"
	"time"

	coupondomain "pooja-supplies/internal/coupons/domain"
	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/pkg/money"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	UserID string
	Status domain.OrderStatus
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create stores a new order with its lines
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the filter, newest first
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)

	// CompareAndSetStatus moves the order from one status to another.
	// It returns false when the recorded status was not from.
	CompareAndSetStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error)

	// CompareAndSetPaymentStatus moves the payment status, optionally
	// recording a UTR. It returns false when the recorded payment status
	// was not from or the order was cancelled meanwhile.
	CompareAndSetPaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus, utr *string) (bool, error)

	// MarkStockApplied records that the delivery stock decrement finished
	MarkStockApplied(ctx context.Context, id string, at time.Time) error

	// ListStockPending returns Delivered orders whose stock was never applied
	ListStockPending(ctx context.Context, limit int) ([]*domain.Order, error)
}

// CouponLookup resolves coupon codes; (nil, nil) means no such coupon
type CouponLookup interface {
	FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error)
}

// CatalogClient defines the interface for catalog service communication
type CatalogClient interface {
	// GetProduct retrieves current product data
	GetProduct(ctx context.Context, productID string) (*ProductInfo, error)

	// DecrementStock removes qty units, floored at zero. reference makes
	// the call idempotent per (reference, product).
	DecrementStock(ctx context.Context, productID string, qty int, reference string) (int, error)
}

// ProductInfo represents product information from the catalog service
type ProductInfo struct {
	ID    string
	Name  string
	Price money.Money
	Stock int
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// PublishOrderPlaced publishes an order placed event
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error

	// PublishOrderUpdated publishes a lifecycle transition
	PublishOrderUpdated(ctx context.Context, order *domain.Order, transition string) error
}

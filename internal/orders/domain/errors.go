package domain

import "pooja-supplies/pkg/errors"

// Reasons carried by ILLEGAL_TRANSITION errors
const (
	ReasonTerminalState    = "TERMINAL_STATE"
	ReasonInvalidMove      = "INVALID_MOVE"
	ReasonNotCancellable   = "NOT_CANCELLABLE"
	ReasonNotUPI           = "NOT_UPI"
	ReasonAlreadyPaid      = "ALREADY_PAID"
	ReasonOrderCancelled   = "ORDER_CANCELLED"
	ReasonNotDelivered     = "NOT_DELIVERED"
	ReasonConcurrentUpdate = "CONCURRENT_UPDATE"
)

// ReasonPriceChanged is carried by the conflict returned when the client's
// expected total no longer matches
const ReasonPriceChanged = "PRICE_CHANGED"

// Domain-specific errors
var (
	ErrUserIDRequired       = errors.NewValidation("user_id is required", nil)
	ErrCartEmpty            = errors.NewValidation("cart is empty", nil)
	ErrProductIDRequired    = errors.NewValidation("product_id is required", nil)
	ErrQuantityInvalid      = errors.NewValidation("quantity must be between 1 and 1000", nil)
	ErrAmountTooLarge       = errors.NewValidation("cart total is too large", nil)
	ErrPriceNegative        = errors.NewValidation("unit price cannot be negative", nil)
	ErrPaymentMethodInvalid = errors.NewValidation("payment method must be COD or UPI", nil)
	ErrStatusInvalid        = errors.NewValidation("status must be one of Pending, Shipped, Delivered, Cancelled", nil)
	ErrUTRInvalid           = errors.NewValidation("UTR must be 8-30 letters or digits", nil)
)

// NewOrderNotFound creates a not found error with the order ID
func NewOrderNotFound(id string) error {
	return errors.NewNotFound("order", id)
}

// NewProductUnavailable reports a cart line whose product no longer exists
func NewProductUnavailable(productID string) error {
	return errors.NewValidation("product is no longer available", map[string]interface{}{
		"product_id": productID,
	})
}

// NewPriceChanged reports a total that moved since the client priced the cart
func NewPriceChanged(expected, actual interface{}) error {
	return errors.NewConflict("order total has changed, review the cart").
		WithReason(ReasonPriceChanged).
		WithDetails(map[string]interface{}{
			"expected_total": expected,
			"total":          actual,
		})
}

// NewNotDelivered rejects stock reconciliation for an undelivered order
func NewNotDelivered(o *Order) error {
	return illegal(ReasonNotDelivered, "stock is only applied to delivered orders", o)
}

func newAddressError(message string, details interface{}) error {
	return errors.NewValidation(message, details)
}

func illegal(reason, message string, o *Order) error {
	return errors.NewIllegalTransition(reason, message).WithDetails(map[string]interface{}{
		"order_id":       o.ID,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
	})
}

// NewConcurrentUpdate reports a compare-and-set lost to another writer
func NewConcurrentUpdate(o *Order) error {
	return illegal(ReasonConcurrentUpdate, "order was changed by another request, reload and retry", o)
}

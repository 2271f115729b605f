package domain

import "pooja-supplies/pkg/errors"

// Rejection reasons reported by Validate
const (
	ReasonNotFound     = "NOT_FOUND"
	ReasonExpired      = "EXPIRED"
	ReasonBelowMinimum = "BELOW_MINIMUM"
)

// Domain-specific errors
var (
	ErrCodeRequired      = errors.NewValidation("coupon code is required", nil)
	ErrCodeInvalid       = errors.NewValidation("coupon code must be 3-32 letters, digits, '-' or '_'", nil)
	ErrKindInvalid       = errors.NewValidation("coupon type must be 'percent' or 'flat'", nil)
	ErrPercentRange      = errors.NewValidation("percent discount must be greater than 0 and at most 100", nil)
	ErrAmountNotPositive = errors.NewValidation("flat discount must be greater than 0", nil)
	ErrAmountPrecision   = errors.NewValidation("flat discount cannot have more than two decimal places", nil)
	ErrMinOrderNegative  = errors.NewValidation("minimum order amount cannot be negative", nil)
	ErrExpiryRequired    = errors.NewValidation("expiry date is required", nil)
	ErrCodeExists        = errors.NewConflict("coupon code already exists")
)

// NewCouponNotFound creates a not found error with the coupon ID
func NewCouponNotFound(id string) error {
	return errors.NewNotFound("coupon", id)
}

func rejected(reason, message string, details interface{}) error {
	return errors.NewValidation(message, details).WithReason(reason)
}

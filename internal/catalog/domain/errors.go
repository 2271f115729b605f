package domain

import "pooja-supplies/pkg/errors"

// Domain-specific errors
var (
	ErrNameRequired     = errors.NewValidation("product name is required", nil)
	ErrPriceNotPositive = errors.NewValidation("price must be greater than 0", nil)
	ErrStockNegative    = errors.NewValidation("stock cannot be negative", nil)
	ErrQuantityInvalid  = errors.NewValidation("quantity must be at least 1", nil)
	ErrReferenceMissing = errors.NewValidation("stock movement reference is required", nil)
	ErrTooManyImages    = errors.NewValidation("a product can have at most 8 images", nil)
	ErrUserIDRequired   = errors.NewValidation("user ID is required", nil)
	ErrRatingInvalid    = errors.NewValidation("rating must be between 1 and 5", nil)
	ErrCommentTooLong   = errors.NewValidation("review comment can be at most 1000 characters", nil)
)

// NewProductNotFound creates a not found error with the product ID
func NewProductNotFound(id string) error {
	return errors.NewNotFound("product", id)
}

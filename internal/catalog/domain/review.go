package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinRating = 1
	MaxRating = 5
	// MaxCommentLength is counted in characters, not bytes
	MaxCommentLength = 1000
)

// Review is a buyer's rating of a product. A user has at most one review
// per product; writing again replaces it.
type Review struct {
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReview creates a review with validation
func NewReview(productID, userID string, rating int, comment string, now time.Time) (*Review, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if rating < MinRating || rating > MaxRating {
		return nil, ErrRatingInvalid
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}
	return &Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AverageRating is the mean rating of reviews, zero when there are none
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		rating  int
		comment string
		wantErr error
	}{
		{"lowest rating", 1, "", nil},
		{"highest rating", 5, "lovely", nil},
		{"zero rating", 0, "", ErrRatingInvalid},
		{"six stars", 6, "", ErrRatingInvalid},
		{"comment at limit", 4, strings.Repeat("ॐ", MaxCommentLength), nil},
		{"comment too long", 4, strings.Repeat("a", MaxCommentLength+1), ErrCommentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReview("p1", "u1", tt.rating, tt.comment, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rating, r.Rating)
			assert.Equal(t, now, r.CreatedAt)
		})
	}
}

func TestAverageRating(t *testing.T) {
	assert.Zero(t, AverageRating(nil))
	assert.InDelta(t, 11.0/3, AverageRating([]*Review{{Rating: 5}, {Rating: 4}, {Rating: 2}}), 1e-9)
}

package domain

import (
	"regexp"
	"strings"
	"time"

	"pooja-supplies/pkg/errors"
)

// TokenPattern is the shape of an Expo push token
var TokenPattern = regexp.MustCompile(`^(ExponentPushToken|ExpoPushToken)\[.+\]$`)

// Domain-specific errors
var (
	ErrUserIDRequired = errors.NewValidation("user ID is required", nil)
	ErrTokenInvalid   = errors.NewValidation("push token must look like ExponentPushToken[...]", nil)
)

// PushToken is a device registered to receive notifications. A token
// belongs to one user; registering it again moves it.
type PushToken struct {
	Token     string
	UserID    string
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPushToken creates a push token with validation
func NewPushToken(userID, token string, admin bool, now time.Time) (*PushToken, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	token = strings.TrimSpace(token)
	if !TokenPattern.MatchString(token) {
		return nil, ErrTokenInvalid
	}
	return &PushToken{
		Token:     token,
		UserID:    userID,
		Admin:     admin,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewTokenNotFound creates a not found error for a token
func NewTokenNotFound(token string) error {
	return errors.NewNotFound("push token", token)
}

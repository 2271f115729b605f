package ports

import (
	"context"

	"pooja-supplies/internal/notifier/domain"
)

// TokenRepository defines the interface for push token persistence
type TokenRepository interface {
	// Upsert stores a token, moving it to the given owner if it exists
	Upsert(ctx context.Context, token *domain.PushToken) error

	// Delete removes a token owned by userID
	Delete(ctx context.Context, userID, token string) error

	// DeleteTokens removes tokens regardless of owner
	DeleteTokens(ctx context.Context, tokens []string) error

	// ListByUser returns a user's tokens
	ListByUser(ctx context.Context, userID string) ([]*domain.PushToken, error)

	// ListAdmins returns every admin device
	ListAdmins(ctx context.Context) ([]*domain.PushToken, error)
}

// PushSender delivers push notifications
type PushSender interface {
	// Send returns one ticket per message, in order. On error it still
	// returns the tickets of messages the push service already accepted.
	Send(ctx context.Context, messages []domain.Message) ([]domain.Ticket, error)
}

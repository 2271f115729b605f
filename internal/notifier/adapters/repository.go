package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pooja-supplies/internal/notifier/domain"
	apperrors "pooja-supplies/pkg/errors"
)

// PushTokenModel is the GORM model for push tokens (persistence layer)
type PushTokenModel struct {
	Token     string    `gorm:"primaryKey;size:255"`
	UserID    string    `gorm:"size:64;index;not null"`
	Admin     bool      `gorm:"index;not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (PushTokenModel) TableName() string {
	return "push_tokens"
}

// GormTokenRepository implements TokenRepository using GORM
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository creates a new token repository
func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

// Migrate runs auto-migration for the token model
func (r *GormTokenRepository) Migrate() error {
	return r.db.AutoMigrate(&PushTokenModel{})
}

// Upsert stores a token, moving it to the new owner when it already exists
func (r *GormTokenRepository) Upsert(ctx context.Context, token *domain.PushToken) error {
	model := &PushTokenModel{
		Token:     token.Token,
		UserID:    token.UserID,
		Admin:     token.Admin,
		CreatedAt: token.CreatedAt,
		UpdatedAt: token.UpdatedAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "admin", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return apperrors.NewUnavailable("failed to save push token", err)
	}
	return nil
}

// Delete removes a token owned by userID
func (r *GormTokenRepository) Delete(ctx context.Context, userID, token string) error {
	result := r.db.WithContext(ctx).
		Where("token = ? AND user_id = ?", token, userID).
		Delete(&PushTokenModel{})
	if result.Error != nil {
		return apperrors.NewUnavailable("failed to delete push token", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewTokenNotFound(token)
	}
	return nil
}

// DeleteTokens removes tokens regardless of owner
func (r *GormTokenRepository) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("token IN ?", tokens).Delete(&PushTokenModel{}).Error; err != nil {
		return apperrors.NewUnavailable("failed to delete push tokens", err)
	}
	return nil
}

// ListByUser returns a user's tokens
func (r *GormTokenRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PushToken, error) {
	return r.list(ctx, r.db.Where("user_id = ?", userID))
}

// ListAdmins returns every admin device
func (r *GormTokenRepository) ListAdmins(ctx context.Context) ([]*domain.PushToken, error) {
	return r.list(ctx, r.db.Where("admin = ?", true))
}

func (r *GormTokenRepository) list(ctx context.Context, query *gorm.DB) ([]*domain.PushToken, error) {
	var models []PushTokenModel
	if err := query.WithContext(ctx).Order("updated_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.NewUnavailable("failed to list push tokens", err)
	}

	tokens := make([]*domain.PushToken, len(models))
	for i, m := range models {
		tokens[i] = &domain.PushToken{
			Token:     m.Token,
			UserID:    m.UserID,
			Admin:     m.Admin,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		}
	}
	return tokens, nil
}

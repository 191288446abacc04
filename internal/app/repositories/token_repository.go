package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/pkg/apperrors"
)

// TokenRepository handles database operations for refresh tokens
type TokenRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db, timeout: defaultQueryTimeout}
}

// Store saves a refresh token, replacing any previous token for the user
func (r *TokenRepository) Store(ctx context.Context, token *models.RefreshToken) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, query,
		token.UserID, token.Token, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return r.mapError(err, "error storing refresh token")
	}

	return nil
}

// GetByToken retrieves a refresh token record, expired tokens excluded
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	query := `
		SELECT user_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1 AND expires_at > NOW()
	`

	var rt models.RefreshToken
	err := r.db.QueryRow(ctx, query, token).
		Scan(&rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, r.mapError(err, "error retrieving refresh token")
	}

	return &rt, nil
}

// DeleteByUserID removes the refresh token of a user, logging them out
func (r *TokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return r.mapError(err, "error deleting refresh token")
	}

	return nil
}

func (r *TokenRepository) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *TokenRepository) mapError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, apperrors.ErrRepositoryTimeout)
	}
	return fmt.Errorf("%s: %w: %v", msg, apperrors.ErrRepository, err)
}

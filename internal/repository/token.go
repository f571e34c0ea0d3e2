package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recipebox/recipe-api/internal/model"
)

var ErrTokenNotFound = errors.New("auth token not found")

// TokenRepository stores the single auth token bound to each user.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetOrCreate returns the user's existing token, or stores key as the user's
// token when none exists yet.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID int64, key string) (*model.AuthToken, error) {
	// INSERT IGNORE leaves the existing row alone when the user already has a token.
	if _, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO auth_tokens (token_key, user_id) VALUES (?, ?)`, key, userID,
	); err != nil {
		return nil, err
	}

	token := &model.AuthToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token_key, user_id, created_at FROM auth_tokens WHERE user_id = ?`, userID,
	).Scan(&token.Key, &token.UserID, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

// GetUserIDByKey resolves a token key to the owning user's ID.
func (r *TokenRepository) GetUserIDByKey(ctx context.Context, key string) (int64, error) {
	var userID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM auth_tokens WHERE token_key = ?`, key,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTokenNotFound
		}
		return 0, err
	}
	return userID, nil
}

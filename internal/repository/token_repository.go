package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo persists/validates issued bearer tokens (one row per jti).
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store records a freshly issued token.
func (r *TokenRepo) Store(ctx context.Context, tokenID, userID string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_tokens (id, user_id, expires_at) VALUES (?,?,?)",
		tokenID, userID, exp.UTC())
	return err
}

// Validate returns the owning user ID if the token exists and has not expired.
func (r *TokenRepo) Validate(ctx context.Context, tokenID string) (string, error) {
	var (
		userID    string
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM access_tokens WHERE id=? LIMIT 1",
		tokenID).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	if time.Now().UTC().After(expiresAt) {
		return "", ErrTokenNotFound
	}
	return userID, nil
}

// Revoke deletes a single token; other tokens of the same user stay valid.
func (r *TokenRepo) Revoke(ctx context.Context, tokenID string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM access_tokens WHERE id=?", tokenID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// PurgeExpired deletes tokens whose expiry has passed and returns how many went.
func (r *TokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM access_tokens WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

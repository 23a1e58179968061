package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PasswordResetToken represents stored reset token metadata. The signed
// token string itself never touches storage; only its id does.
type PasswordResetToken struct {
	ID         int64
	TokenID    string
	UserID     int64
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// PasswordResetRepository manages reset token persistence.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	// InvalidateForUser consumes all outstanding tokens for the user.
	InvalidateForUser(ctx context.Context, userID int64) error
	// Redeem consumes a live token and replaces the bound user's
	// password hash in one transaction. Exactly one concurrent caller
	// can win; the rest get pgx.ErrNoRows. On any failure the token
	// stays live and the hash is untouched.
	Redeem(ctx context.Context, tokenID, passwordHash string) (int64, error)
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *PasswordResetToken) error {
	const query = `
        INSERT INTO password_reset_tokens (token_id, user_id, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`

	return withTimeout(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query,
			token.TokenID,
			token.UserID,
			token.ExpiresAt,
		).Scan(&token.ID, &token.CreatedAt)
	})
}

func (r *passwordResetRepository) InvalidateForUser(ctx context.Context, userID int64) error {
	const query = `
        UPDATE password_reset_tokens SET consumed_at=NOW()
        WHERE user_id=$1 AND consumed_at IS NULL`

	return withTimeout(ctx, func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, query, userID)
		return err
	})
}

func (r *passwordResetRepository) Redeem(ctx context.Context, tokenID, passwordHash string) (int64, error) {
	const consumeQuery = `
        UPDATE password_reset_tokens SET consumed_at=NOW()
        WHERE token_id=$1 AND consumed_at IS NULL AND expires_at > NOW()
        RETURNING user_id`
	const passwordQuery = `
        UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`

	var userID int64
	err := withTimeout(ctx, func(ctx context.Context) error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		if err := tx.QueryRow(ctx, consumeQuery, tokenID).Scan(&userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, passwordQuery, passwordHash, userID); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

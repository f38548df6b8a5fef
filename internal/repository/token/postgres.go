package token

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, token Token) error {
	const q = `
INSERT INTO user_tokens (token, user_id, kind, expires_at)
VALUES ($1, $2, $3, $4)
`
	_, err := r.pool.Exec(ctx, q, token.Token, token.UserID, string(token.Kind), token.ExpiresAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if db.IsForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Consume(ctx context.Context, token string, kind Kind) (*Token, error) {
	const q = `
DELETE FROM user_tokens
WHERE token = $1 AND kind = $2
RETURNING token, user_id::text, kind, expires_at, created_at
`
	var (
		out  Token
		kstr string
	)
	if err := r.pool.QueryRow(ctx, q, token, string(kind)).Scan(
		&out.Token,
		&out.UserID,
		&kstr,
		&out.ExpiresAt,
		&out.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	out.Kind = Kind(kstr)
	return &out, nil
}

func (r *postgresRepo) DeleteForUser(ctx context.Context, userID string, kind Kind) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_tokens WHERE user_id = $1 AND kind = $2`, userID, string(kind))
	return err
}

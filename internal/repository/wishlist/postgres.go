package wishlist

import (
	"context"
	"fmt"

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

func (r *postgresRepo) Add(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO wishlist_items (user_id, product_id) VALUES ($1, $2)`, userID, productID)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return fmt.Errorf("%w: product already in wishlist", domain.ErrAlreadyExists)
		case db.IsForeignKeyViolation(err):
			return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID, productID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: product not in wishlist", domain.ErrNotFound)
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	const q = `
SELECT p.id::text, p.name, p.price, COALESCE(p.image_url, ''), w.created_at
FROM wishlist_items w
JOIN products p ON p.id = w.product_id
WHERE w.user_id = $1
ORDER BY w.created_at ASC, p.id ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.WishlistItem{}
	for rows.Next() {
		var it domain.WishlistItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.ImageURL, &it.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT id::text, user_id::text, created_at, updated_at
FROM carts
WHERE user_id = $1
`
	cart, err := scanCart(r.pool.QueryRow(ctx, q, userID))
	if err != nil {
		return nil, err
	}
	if err := loadLines(ctx, r.pool, cart, false); err != nil {
		r.logger.Printf("cart repo: get user_id=%s error=%v", userID, err)
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	var out *domain.Cart
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		cart, err := ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := loadLines(ctx, tx, cart, true); err != nil {
			return err
		}
		product, err := shareProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if err := cart.AddLine(*product, quantity); err != nil {
			return err
		}
		if err := saveLines(ctx, tx, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		r.logger.Printf("cart repo: add user_id=%s product_id=%s qty=%d error=%v", userID, productID, quantity, err)
		return nil, err
	}
	r.logger.Printf("cart repo: add user_id=%s product_id=%s qty=%d lines=%d", userID, productID, quantity, len(out.Lines))
	return out, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	var out *domain.Cart
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		cart, err := LockByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := cart.RemoveLine(productID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND product_id = $2`, cart.ID, productID); err != nil {
			return err
		}
		if err := saveLines(ctx, tx, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	const q = `
DELETE FROM cart_lines
USING carts
WHERE cart_lines.cart_id = carts.id AND carts.user_id = $1
`
	if _, err := r.pool.Exec(ctx, q, userID); err != nil {
		r.logger.Printf("cart repo: clear user_id=%s error=%v", userID, err)
		return err
	}
	return nil
}

// LockByUser loads the user's cart inside tx, holding its row lock and a share
// lock on the referenced products until tx ends.
func LockByUser(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error) {
	const q = `
SELECT id::text, user_id::text, created_at, updated_at
FROM carts
WHERE user_id = $1
FOR UPDATE
`
	cart, err := scanCart(tx.QueryRow(ctx, q, userID))
	if err != nil {
		return nil, err
	}
	if err := loadLines(ctx, tx, cart, true); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearLines removes every line of the cart inside tx.
func ClearLines(ctx context.Context, tx pgx.Tx, cartID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func ensureCart(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
RETURNING id::text, user_id::text, created_at, updated_at
`
	return scanCart(tx.QueryRow(ctx, q, userID))
}

func shareProduct(ctx context.Context, tx pgx.Tx, productID string) (*domain.Product, error) {
	const q = `
SELECT id::text, name, price
FROM products
WHERE id = $1
FOR SHARE
`
	var p domain.Product
	if err := tx.QueryRow(ctx, q, productID).Scan(&p.ID, &p.Name, &p.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// loadLines fills cart lines with the live product name and price.
func loadLines(ctx context.Context, q querier, cart *domain.Cart, lock bool) error {
	query := `
SELECT cl.product_id::text, p.name, cl.quantity, p.price, cl.created_at
FROM cart_lines cl
JOIN products p ON p.id = cl.product_id
WHERE cl.cart_id = $1
ORDER BY cl.id ASC
`
	if lock {
		query += "FOR SHARE OF p\n"
	}
	rows, err := q.Query(ctx, query, cart.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	cart.Lines = nil
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Quantity, &line.UnitPrice, &line.AddedAt); err != nil {
			return err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	cart.Recalculate()
	return nil
}

// saveLines writes the quantity and repriced amount of every line.
func saveLines(ctx context.Context, tx pgx.Tx, cart *domain.Cart) error {
	const q = `
INSERT INTO cart_lines (cart_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = EXCLUDED.quantity,
    price = EXCLUDED.price
`
	if len(cart.Lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, line := range cart.Lines {
		batch.Queue(q, cart.ID, line.ProductID, line.Quantity, line.Price.StringFixed(2))
	}
	br := tx.SendBatch(ctx, batch)
	for range cart.Lines {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var c domain.Cart
	if err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

const orderColumns = `id::text, user_id::text, status, total_amount, currency, payment_ref, created_at, updated_at`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
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

// CreateFromCart locks the user's cart, builds the order from it, stores the
// order with its lines and clears the cart, all in one transaction.
func (r *postgresRepo) CreateFromCart(ctx context.Context, userID string, build BuildFunc) (*domain.Order, error) {
	var out *domain.Order
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		cart, err := cartrepo.LockByUser(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrEmptyCart
			}
			return err
		}
		order, err := build(cart)
		if err != nil {
			return err
		}
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := cartrepo.ClearLines(ctx, tx, cart.ID); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		r.logger.Printf("order repo: create user_id=%s error=%v", userID, err)
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s user_id=%s total=%s lines=%d", out.ID, userID, out.TotalAmount, len(out.Lines))
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := loadLines(ctx, r.pool, order); err != nil {
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return order, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id ASC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := loadLines(ctx, r.pool, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UpdateStatus applies a status change under the order's row lock.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, apply func(*domain.Order) error) (*domain.Order, error) {
	var out *domain.Order
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
		order, err := scanOrder(tx.QueryRow(ctx, q, id))
		if err != nil {
			return err
		}
		if err := apply(order); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING updated_at
`, id, string(order.Status)).Scan(&order.UpdatedAt); err != nil {
			return err
		}
		if err := loadLines(ctx, tx, order); err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		r.logger.Printf("order repo: update status id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("order repo: update status id=%s status=%s", id, out.Status)
	return out, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	const q = `
INSERT INTO orders (user_id, status, total_amount, currency, payment_ref)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, created_at, updated_at
`
	err := tx.QueryRow(ctx, q, o.UserID, string(o.Status), o.TotalAmount.StringFixed(2), o.Currency, o.PaymentRef).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: payment %s already used for another order", domain.ErrAlreadyExists, o.PaymentRef)
		}
		return err
	}

	const lineQ = `
INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price, price)
VALUES ($1, $2, $3, $4, $5, $6)
`
	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(lineQ, o.ID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice.StringFixed(2), l.Price.StringFixed(2))
	}
	br := tx.SendBatch(ctx, batch)
	for range o.Lines {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

func loadLines(ctx context.Context, q querier, o *domain.Order) error {
	const lineQ = `
SELECT product_id::text, product_name, quantity, unit_price, price
FROM order_lines
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := q.Query(ctx, lineQ, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Lines = nil
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Price); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &status, &o.TotalAmount, &o.Currency, &o.PaymentRef, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
)

const productColumns = `id::text, name, description, price, COALESCE(category, ''), COALESCE(image_url, ''), created_at, updated_at`

// sortColumns is the full set of orderable columns.
var sortColumns = map[domain.SortKey]string{
	domain.SortByName:      "lower(name)",
	domain.SortByPrice:     "price",
	domain.SortByCategory:  "lower(COALESCE(category, ''))",
	domain.SortByCreatedAt: "created_at",
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

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int, error) {
	listQ, countQ, args := buildListQuery(filter, page)

	var total int
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		r.logger.Printf("product repo: count error=%v", err)
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, listQ, append(args, page.Size, page.Offset())...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, 0, err
	}
	r.logger.Printf("product repo: list page=%d size=%d count=%d total=%d", page.Number, page.Size, len(result), total)
	return result, total, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (name, description, price, category, image_url)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.Name, p.Description, p.Price.StringFixed(2), p.Category, p.ImageURL))
	if err != nil {
		r.logger.Printf("product repo: create name=%s error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%s", out.ID, out.Name)
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
UPDATE products
SET name = $2,
    description = $3,
    price = $4,
    category = NULLIF($5, ''),
    image_url = NULLIF($6, ''),
    updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Category, p.ImageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s", out.ID)
	return out, nil
}

func (r *postgresRepo) SetImageURL(ctx context.Context, id, url string) (*domain.Product, error) {
	q := `
UPDATE products
SET image_url = NULLIF($2, ''),
    updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: set image id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("product repo: set image id=%s", id)
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

// buildListQuery returns the page query, the count query and their shared
// filter arguments. The page query expects limit and offset appended after them.
func buildListQuery(filter domain.ProductFilter, page domain.PageRequest) (string, string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) int {
		args = append(args, v)
		return len(args)
	}
	if filter.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price >= $%d", next(filter.MinPrice.String())))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price <= $%d", next(filter.MaxPrice.String())))
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", next(c)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		n := next("%" + escapeLike(q) + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	col, ok := sortColumns[page.SortBy]
	if !ok {
		col = sortColumns[domain.SortByCreatedAt]
	}
	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}

	listQ := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		productColumns, where, col, dir, len(args)+1, len(args)+2)
	countQ := `SELECT COUNT(*) FROM products` + where
	return listQ, countQ, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

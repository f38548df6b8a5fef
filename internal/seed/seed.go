package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
	"storefront/internal/config"
)

type productSeed struct {
	Name        string
	Description string
	Price       string
	Category    string
}

var demoProducts = []productSeed{
	{
		Name:        "Demo T-Shirt",
		Description: "Soft cotton tee for demo purposes",
		Price:       "499.00",
		Category:    "Apparel",
	},
	{
		Name:        "Demo Mug",
		Description: "Ceramic mug with demo logo",
		Price:       "299.00",
		Category:    "Kitchen",
	},
	{
		Name:        "The Go Programming Language",
		Description: "Paperback edition",
		Price:       "150.00",
		Category:    "Books",
	},
}

// Apply creates the bootstrap administrator and demo products. Running it
// again changes nothing.
func Apply(ctx context.Context, pool *pgxpool.Pool, admin config.AdminConfig) error {
	if err := ensureAdmin(ctx, pool, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	for _, p := range demoProducts {
		if err := ensureProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("ensure product %s: %w", p.Name, err)
		}
	}
	return nil
}

// ensureAdmin inserts an Active admin. An existing account with the same
// username or email is left as is.
func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, admin config.AdminConfig) error {
	if strings.TrimSpace(admin.Password) == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (username, email, password_hash, role, status)
VALUES ($1, $2, $3, 'Admin', 'Active')
ON CONFLICT DO NOTHING
`
	_, err = pool.Exec(ctx, q, admin.Username, strings.ToLower(admin.Email), string(hashed))
	return err
}

func ensureProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (name, description, price, category)
SELECT $1, $2, $3::numeric, $4
WHERE NOT EXISTS (SELECT 1 FROM products WHERE lower(name) = lower($1))
`
	_, err := pool.Exec(ctx, q, p.Name, p.Description, p.Price, p.Category)
	return err
}

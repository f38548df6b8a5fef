package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists per-user carts. Every mutation runs in one transaction
// holding the row lock of the user's cart.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

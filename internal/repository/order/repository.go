package order

import (
	"context"

	"storefront/internal/domain"
)

// BuildFunc turns the locked cart into the order to persist. Returning an
// error aborts checkout and leaves the cart untouched.
type BuildFunc func(cart *domain.Cart) (*domain.Order, error)

// Repository persists orders and performs the cart-to-order conversion.
type Repository interface {
	CreateFromCart(ctx context.Context, userID string, build BuildFunc) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, apply func(*domain.Order) error) (*domain.Order, error)
}

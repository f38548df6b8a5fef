package product

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists catalog products.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	// SetImageURL changes only the image of the product.
	SetImageURL(ctx context.Context, id, url string) (*domain.Product, error)
}

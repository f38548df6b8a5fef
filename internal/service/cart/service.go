package cart

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

type Service struct {
	repo cartRepo
}

type cartRepo interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

func New(repo cartRepo) *Service {
	return &Service{repo: repo}
}

type AddItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Get returns the user's cart with live prices. A user without a cart gets
// ErrNotFound.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.Lines == nil {
		c.Lines = []domain.CartLine{}
	}
	return c, nil
}

// AddItem merges quantity into an existing line for the product or appends a
// new one. Line prices follow the current catalog price.
func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (*domain.Cart, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, fmt.Errorf("%w: productId required", domain.ErrInvalidArgument)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidArgument)
	}
	if in.Quantity > domain.MaxLineQuantity {
		return nil, fmt.Errorf("%w: quantity must be at most %d", domain.ErrInvalidArgument, domain.MaxLineQuantity)
	}
	if err := domain.CheckID("product", productID); err != nil {
		return nil, err
	}
	c, err := s.repo.AddItem(ctx, userID, productID, in.Quantity)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if err := domain.CheckID("product", productID); err != nil {
		return nil, err
	}
	return s.repo.RemoveItem(ctx, userID, productID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

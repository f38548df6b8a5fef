package wishlist

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
)

type wishlistRepo interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
}

type Service struct {
	repo wishlistRepo
}

func New(repo wishlistRepo) *Service {
	return &Service{repo: repo}
}

// Add saves a product for later. Adding the same product twice is reported
// as ErrAlreadyExists.
func (s *Service) Add(ctx context.Context, userID, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: productId required", domain.ErrInvalidArgument)
	}
	if err := domain.CheckID("product", productID); err != nil {
		return err
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	if err := domain.CheckID("product", productID); err != nil {
		return err
	}
	return s.repo.Remove(ctx, userID, productID)
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}
	return items, nil
}

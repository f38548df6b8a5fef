package user

import (
	"context"

	"storefront/internal/domain"
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByUsername matches the username, ignoring case.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetStatus(ctx context.Context, id string, status domain.UserStatus) error
	SetPasswordHash(ctx context.Context, id, hash string) error
}

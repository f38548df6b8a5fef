package wishlist

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/dbtest"
	"storefront/internal/domain"
)

func TestPostgres_AddRemoveList(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	userID := dbtest.InsertUser(ctx, t, pool, "jack")
	productID := dbtest.InsertProduct(ctx, t, pool, "Kettle", "25.00", "Kitchen")
	repo := NewPostgres(pool)

	if err := repo.Add(ctx, userID, productID); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(ctx, userID, productID); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := repo.Add(ctx, userID, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}

	items, err := repo.List(ctx, userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Kettle" {
		t.Fatalf("unexpected items %+v", items)
	}

	if err := repo.Remove(ctx, userID, productID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := repo.Remove(ctx, userID, productID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

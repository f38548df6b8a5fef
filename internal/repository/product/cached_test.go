package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

type stubRepo struct {
	product   *domain.Product
	err       error
	getCalls  int
	lastPrice decimal.Decimal
}

func (s *stubRepo) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	s.getCalls++
	return s.product, s.err
}

func (s *stubRepo) List(_ context.Context, _ domain.ProductFilter, _ domain.PageRequest) ([]domain.Product, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	return &p, nil
}

func (s *stubRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.lastPrice = p.Price
	return &p, s.err
}

func (s *stubRepo) Delete(_ context.Context, _ string) error {
	return s.err
}

func (s *stubRepo) SetImageURL(_ context.Context, id, url string) (*domain.Product, error) {
	return &domain.Product{ID: id, ImageURL: url}, s.err
}

type memoryCache struct {
	items       map[string]domain.Product
	invalidated []string
}

func (m *memoryCache) Get(_ context.Context, id string) (*domain.Product, bool) {
	p, ok := m.items[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (m *memoryCache) Set(_ context.Context, p domain.Product) {
	m.items[p.ID] = p
}

func (m *memoryCache) Invalidate(_ context.Context, id string) {
	delete(m.items, id)
	m.invalidated = append(m.invalidated, id)
}

func TestCachedRepo_ReadThrough(t *testing.T) {
	next := &stubRepo{product: &domain.Product{ID: "p1", Name: "Lamp"}}
	cache := &memoryCache{items: map[string]domain.Product{}}
	repo := NewCached(next, cache, nil)

	for i := 0; i < 3; i++ {
		p, err := repo.GetByID(context.Background(), "p1")
		if err != nil || p.Name != "Lamp" {
			t.Fatalf("GetByID: %v %+v", err, p)
		}
	}
	if next.getCalls != 1 {
		t.Fatalf("expected one database read, got %d", next.getCalls)
	}
}

func TestCachedRepo_InvalidatesOnWrite(t *testing.T) {
	next := &stubRepo{product: &domain.Product{ID: "p1"}}
	cache := &memoryCache{items: map[string]domain.Product{"p1": {ID: "p1"}}}
	repo := NewCached(next, cache, nil)

	if _, err := repo.Update(context.Background(), domain.Product{ID: "p1", Price: decimal.NewFromInt(5)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, ok := cache.items["p1"]; ok {
		t.Fatalf("expected entry dropped after update")
	}
	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.SetImageURL(context.Background(), "p1", "https://cdn.example.com/p1.png"); err != nil {
		t.Fatalf("SetImageURL: %v", err)
	}
	if len(cache.invalidated) != 3 {
		t.Fatalf("expected three invalidations, got %v", cache.invalidated)
	}
}

func TestCachedRepo_MissIsNotCached(t *testing.T) {
	next := &stubRepo{err: domain.ErrNotFound}
	cache := &memoryCache{items: map[string]domain.Product{}}
	repo := NewCached(next, cache, nil)

	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(cache.items) != 0 {
		t.Fatalf("expected nothing cached")
	}
}

package product

import (
	"context"
	"io"
	"log"

	"storefront/internal/domain"
)

type productCache interface {
	Get(ctx context.Context, id string) (*domain.Product, bool)
	Set(ctx context.Context, p domain.Product)
	Invalidate(ctx context.Context, id string)
}

type cachedRepo struct {
	next   Repository
	cache  productCache
	logger *log.Logger
}

// NewCached wraps next with a read-through cache for GetByID. Writes go to
// next first and then drop the cached entry.
func NewCached(next Repository, cache productCache, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &cachedRepo{next: next, cache: cache, logger: logger}
}

func (r *cachedRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := r.cache.Get(ctx, id); ok {
		return p, nil
	}
	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, *p)
	return p, nil
}

func (r *cachedRepo) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int, error) {
	return r.next.List(ctx, filter, page)
}

func (r *cachedRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	return r.next.Create(ctx, p)
}

func (r *cachedRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	out, err := r.next.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx, p.ID)
	return out, nil
}

func (r *cachedRepo) SetImageURL(ctx context.Context, id, url string) (*domain.Product, error) {
	out, err := r.next.SetImageURL(ctx, id, url)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx, id)
	return out, nil
}

func (r *cachedRepo) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, id)
	return nil
}

package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type assetStore interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Service exposes catalog reads to everyone and mutations to administrators.
// Role checks happen in the transport layer.
type Service struct {
	products   productrepo.Repository
	categories categoryRepo
	assets     assetStore
	logger     *log.Logger
}

func New(products productrepo.Repository, categories categoryRepo, assets assetStore, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{products: products, categories: categories, assets: assets, logger: logger}
}

type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
}

// ListInput combines the optional filter predicates with paging. Zero paging
// fields select the defaults.
type ListInput struct {
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Category   string
	Query      string
	PageNumber int
	PageSize   int
	SortBy     string
	SortDir    string
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if err := domain.CheckID("product", id); err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, in ListInput) (domain.ProductPage, error) {
	filter, page, err := normalizeList(in)
	if err != nil {
		return domain.ProductPage{}, err
	}
	items, total, err := s.products.List(ctx, filter, page)
	if err != nil {
		return domain.ProductPage{}, err
	}
	return domain.NewProductPage(items, total, page), nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	return s.products.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := domain.CheckID("product", id); err != nil {
		return nil, err
	}
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.products.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := domain.CheckID("product", id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

// UploadImage stores the file in the asset store and points the product at it.
// Only the image column is written, so concurrent edits to other fields
// survive. The product is left unchanged when the upload fails.
func (s *Service) UploadImage(ctx context.Context, id string, r io.Reader, filename string) (*domain.Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	url, err := s.UploadFile(ctx, r, filename)
	if err != nil {
		return nil, err
	}
	return s.products.SetImageURL(ctx, id, url)
}

func (s *Service) UploadFile(ctx context.Context, r io.Reader, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%w: file name required", domain.ErrInvalidArgument)
	}
	url, err := s.assets.Upload(ctx, r, filename)
	if err != nil {
		s.logger.Printf("catalog: upload file=%s error=%v", filename, err)
		return "", err
	}
	s.logger.Printf("catalog: uploaded file=%s url=%s", filename, url)
	return url, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

func productFromInput(in ProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: name required", domain.ErrInvalidArgument)
	}
	if in.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return domain.Product{}, fmt.Errorf("%w: price has more than two decimal places", domain.ErrInvalidArgument)
	}
	return domain.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}, nil
}

func normalizeList(in ListInput) (domain.ProductFilter, domain.PageRequest, error) {
	filter := domain.ProductFilter{
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Category: strings.TrimSpace(in.Category),
		Query:    strings.TrimSpace(in.Query),
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return filter, domain.PageRequest{}, fmt.Errorf("%w: minPrice greater than maxPrice", domain.ErrInvalidArgument)
	}

	page := domain.PageRequest{Number: in.PageNumber, Size: in.PageSize}
	switch {
	case page.Number == 0:
		page.Number = 1
	case page.Number < 0:
		return filter, page, fmt.Errorf("%w: pageNumber must be at least 1", domain.ErrInvalidArgument)
	}
	switch {
	case page.Size == 0:
		page.Size = DefaultPageSize
	case page.Size < 0 || page.Size > MaxPageSize:
		return filter, page, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrInvalidArgument, MaxPageSize)
	}

	key, err := domain.ParseSortKey(in.SortBy)
	if err != nil {
		return filter, page, err
	}
	page.SortBy = key

	switch strings.ToLower(strings.TrimSpace(in.SortDir)) {
	case "", "asc":
	case "desc":
		page.Desc = true
	default:
		return filter, page, fmt.Errorf("%w: sortDir must be asc or desc", domain.ErrInvalidArgument)
	}
	return filter, page, nil
}

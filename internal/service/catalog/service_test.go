package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

const productID = "3f1b7c1e-54a6-4f0e-9a87-5c2a8e0f1b22"

type stubProducts struct {
	product    *domain.Product
	getErr     error
	listItems  []domain.Product
	listTotal  int
	lastFilter domain.ProductFilter
	lastPage   domain.PageRequest
	listCalls  int
	lastCreate domain.Product
	lastUpdate domain.Product
	updates    int
	deleteErr  error
	imageSets  int
}

func (s *stubProducts) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	clone := *s.product
	return &clone, nil
}

func (s *stubProducts) List(_ context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]domain.Product, int, error) {
	s.listCalls++
	s.lastFilter = filter
	s.lastPage = page
	return s.listItems, s.listTotal, nil
}

func (s *stubProducts) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.lastCreate = p
	p.ID = productID
	return &p, nil
}

func (s *stubProducts) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.updates++
	s.lastUpdate = p
	return &p, nil
}

func (s *stubProducts) Delete(_ context.Context, _ string) error {
	return s.deleteErr
}

func (s *stubProducts) SetImageURL(_ context.Context, id, url string) (*domain.Product, error) {
	s.imageSets++
	clone := *s.product
	clone.ID = id
	clone.ImageURL = url
	return &clone, nil
}

type stubCategories struct {
	cats []domain.Category
}

func (s stubCategories) List(context.Context) ([]domain.Category, error) {
	return s.cats, nil
}

type stubAssets struct {
	url          string
	err          error
	lastFilename string
	lastBody     string
}

func (s *stubAssets) Upload(_ context.Context, r io.Reader, filename string) (string, error) {
	s.lastFilename = filename
	b, _ := io.ReadAll(r)
	s.lastBody = string(b)
	return s.url, s.err
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestListAppliesDefaults(t *testing.T) {
	products := &stubProducts{listTotal: 45}
	svc := New(products, stubCategories{}, &stubAssets{}, nil)

	page, err := svc.List(context.Background(), ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if products.lastPage.Number != 1 || products.lastPage.Size != DefaultPageSize {
		t.Fatalf("unexpected defaults %+v", products.lastPage)
	}
	if products.lastPage.SortBy != domain.SortByCreatedAt || products.lastPage.Desc {
		t.Fatalf("expected createdAt asc, got %+v", products.lastPage)
	}
	if page.TotalPages != 3 || page.TotalRecords != 45 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestListComposesFilterAndPaging(t *testing.T) {
	products := &stubProducts{}
	svc := New(products, stubCategories{}, &stubAssets{}, nil)

	_, err := svc.List(context.Background(), ListInput{
		MinPrice:   dec("100"),
		MaxPrice:   dec("200"),
		Category:   " Books ",
		Query:      "go",
		PageNumber: 2,
		PageSize:   5,
		SortBy:     "price",
		SortDir:    "DESC",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if products.lastFilter.Category != "Books" || products.lastFilter.Query != "go" {
		t.Fatalf("unexpected filter %+v", products.lastFilter)
	}
	if products.lastPage.Number != 2 || products.lastPage.Size != 5 || products.lastPage.SortBy != domain.SortByPrice || !products.lastPage.Desc {
		t.Fatalf("unexpected page %+v", products.lastPage)
	}
}

func TestListRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		in   ListInput
	}{
		{"unknown sort", ListInput{SortBy: "password"}},
		{"bad direction", ListInput{SortDir: "sideways"}},
		{"negative page", ListInput{PageNumber: -1}},
		{"page size too large", ListInput{PageSize: MaxPageSize + 1}},
		{"negative page size", ListInput{PageSize: -5}},
		{"min above max", ListInput{MinPrice: dec("10"), MaxPrice: dec("5")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			products := &stubProducts{}
			svc := New(products, stubCategories{}, &stubAssets{}, nil)
			if _, err := svc.List(context.Background(), tc.in); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
			if products.listCalls != 0 {
				t.Fatalf("repository must not be queried")
			}
		})
	}
}

func TestGetMalformedIDIsNotFound(t *testing.T) {
	svc := New(&stubProducts{}, stubCategories{}, &stubAssets{}, nil)
	if _, err := svc.Get(context.Background(), "42"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	products := &stubProducts{}
	svc := New(products, stubCategories{}, &stubAssets{}, nil)

	if _, err := svc.Create(context.Background(), ProductInput{Name: " ", Price: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for blank name, got %v", err)
	}
	if _, err := svc.Create(context.Background(), ProductInput{Name: "Pen", Price: decimal.NewFromInt(-1)}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for negative price, got %v", err)
	}
	if _, err := svc.Create(context.Background(), ProductInput{Name: "Pen", Price: decimal.RequireFromString("1.005")}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for sub-cent price, got %v", err)
	}

	p, err := svc.Create(context.Background(), ProductInput{Name: " Pen ", Price: decimal.RequireFromString("12.50"), Category: "Office"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" || products.lastCreate.Name != "Pen" {
		t.Fatalf("unexpected create %+v", products.lastCreate)
	}
}

func TestUploadImageSetsURL(t *testing.T) {
	products := &stubProducts{product: &domain.Product{ID: productID, Name: "Pen"}}
	assets := &stubAssets{url: "https://cdn.example.com/pen.png"}
	svc := New(products, stubCategories{}, assets, nil)

	p, err := svc.UploadImage(context.Background(), productID, strings.NewReader("png-bytes"), "pen.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if p.ImageURL != assets.url || products.imageSets != 1 {
		t.Fatalf("expected image url set, got %+v", p)
	}
	if products.updates != 0 {
		t.Fatalf("expected only the image column written, got %d full updates", products.updates)
	}
	if assets.lastBody != "png-bytes" || assets.lastFilename != "pen.png" {
		t.Fatalf("unexpected upload %q %q", assets.lastFilename, assets.lastBody)
	}
}

func TestUploadImageFailureLeavesProduct(t *testing.T) {
	products := &stubProducts{product: &domain.Product{ID: productID, Name: "Pen", ImageURL: "old.png"}}
	assets := &stubAssets{err: domain.ErrUploadFailed}
	svc := New(products, stubCategories{}, assets, nil)

	if _, err := svc.UploadImage(context.Background(), productID, strings.NewReader("x"), "pen.png"); !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("expected upload failed, got %v", err)
	}
	if products.updates != 0 || products.imageSets != 0 {
		t.Fatalf("product must not be updated on upload failure")
	}
}

func TestUploadImageMissingProduct(t *testing.T) {
	products := &stubProducts{getErr: domain.ErrNotFound}
	assets := &stubAssets{url: "u"}
	svc := New(products, stubCategories{}, assets, nil)

	if _, err := svc.UploadImage(context.Background(), productID, strings.NewReader("x"), "pen.png"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if assets.lastFilename != "" {
		t.Fatalf("nothing should be uploaded for a missing product")
	}
}

func TestCategoriesNeverNil(t *testing.T) {
	svc := New(&stubProducts{}, stubCategories{}, &stubAssets{}, nil)
	cats, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if cats == nil {
		t.Fatalf("expected empty slice")
	}
}

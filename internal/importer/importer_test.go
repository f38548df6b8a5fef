package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

type stubProductRepo struct {
	created []domain.Product
	updated []domain.Product
}

func (s *stubProductRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.created = append(s.created, p)
	return &p, nil
}

func (s *stubProductRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		return nil, domain.ErrNotFound
	}
	s.updated = append(s.updated, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,description,price,category,image_url,id
Pen,Blue ink,12.50,Office,https://example.com/pen.jpg,
,,,,,
Go Book,Paperback,150,Books,,00000000-0000-4000-8000-000000000002`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}
	if len(repo.created) != 1 || len(repo.updated) != 1 {
		t.Fatalf("expected one create and one update, got %d/%d", len(repo.created), len(repo.updated))
	}

	pen := repo.created[0]
	if pen.Name != "Pen" || pen.Category != "Office" || pen.ImageURL != "https://example.com/pen.jpg" || !pen.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected product data: %+v", pen)
	}
	if repo.updated[0].ID != "00000000-0000-4000-8000-000000000002" {
		t.Fatalf("expected id to be preserved, got %s", repo.updated[0].ID)
	}
}

func TestCSVImporter_RejectsBadPrice(t *testing.T) {
	csvData := "name,price\nPen,12.50\nMug,cheap\n"
	repo := &stubProductRepo{}

	count, err := NewCSVImporter(strings.NewReader(csvData), repo).Run(context.Background())
	if err == nil {
		t.Fatalf("expected error for bad price")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line number in error, got %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rows before the bad one to be imported, got %d", count)
	}
}

func TestCSVImporter_RequiresColumns(t *testing.T) {
	if _, err := NewCSVImporter(strings.NewReader("title,cost\n"), &stubProductRepo{}).Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}

package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductFilter holds the optional list predicates. Zero values mean "any".
type ProductFilter struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Category string
	Query    string
}

type SortKey string

const (
	SortByName      SortKey = "name"
	SortByPrice     SortKey = "price"
	SortByCategory  SortKey = "category"
	SortByCreatedAt SortKey = "createdAt"
)

// ParseSortKey maps a client supplied sort key onto the allowed set.
// An empty key selects SortByCreatedAt.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortByCreatedAt, nil
	}
	for _, k := range []SortKey{SortByName, SortByPrice, SortByCategory, SortByCreatedAt} {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported sort key %q", ErrInvalidArgument, s)
}

type PageRequest struct {
	Number int
	Size   int
	SortBy SortKey
	Desc   bool
}

// Offset is the number of rows skipped before the page starts.
func (p PageRequest) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

type ProductPage struct {
	Products     []Product `json:"Products"`
	TotalRecords int       `json:"TotalRecords"`
	PageNumber   int       `json:"PageNumber"`
	PageSize     int       `json:"PageSize"`
	TotalPages   int       `json:"TotalPages"`
}

// NewProductPage derives page counters from the total row count.
func NewProductPage(products []Product, total int, page PageRequest) ProductPage {
	pages := 0
	if page.Size > 0 {
		pages = (total + page.Size - 1) / page.Size
	}
	if products == nil {
		products = []Product{}
	}
	return ProductPage{
		Products:     products,
		TotalRecords: total,
		PageNumber:   page.Number,
		PageSize:     page.Size,
		TotalPages:   pages,
	}
}

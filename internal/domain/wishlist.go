package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem is a product a user saved for later, joined with catalog fields.
type WishlistItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

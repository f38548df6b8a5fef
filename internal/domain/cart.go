package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the units of one product in a cart.
const MaxLineQuantity = 1000

// MaxAmount is the largest money value the NUMERIC(12,2) columns hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Cart is the per-user shopping cart. Lines keep insertion order and hold at
// most one entry per product.
type Cart struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Price     decimal.Decimal `json:"price"`
	AddedAt   time.Time       `json:"addedAt"`
}

// AddLine merges quantity into the product's line, or appends a new one.
// The line is repriced from the product's current price. The cart is left
// unchanged when the merged quantity or the resulting amounts exceed the caps.
func (c *Cart) AddLine(p Product, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}
	if quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity must be at most %d", ErrInvalidArgument, MaxLineQuantity)
	}

	lines := append([]CartLine(nil), c.Lines...)
	merged := false
	for i := range lines {
		if lines[i].ProductID != p.ID {
			continue
		}
		if lines[i].Quantity+quantity > MaxLineQuantity {
			return fmt.Errorf("%w: at most %d units of product %s per cart", ErrInvalidArgument, MaxLineQuantity, p.ID)
		}
		lines[i].Quantity += quantity
		lines[i].Name = p.Name
		lines[i].UnitPrice = p.Price
		merged = true
		break
	}
	if !merged {
		lines = append(lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  quantity,
			UnitPrice: p.Price,
			AddedAt:   time.Now().UTC(),
		})
	}

	next := Cart{Lines: lines}
	next.Recalculate()
	if next.Total.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: cart total exceeds %s", ErrInvalidArgument, MaxAmount.StringFixed(2))
	}
	c.Lines = next.Lines
	c.Total = next.Total
	return nil
}

// RemoveLine drops the line for productID.
func (c *Cart) RemoveLine(productID string) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.Recalculate()
			return nil
		}
	}
	return fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
}

func (c *Cart) Clear() {
	c.Lines = nil
	c.Total = decimal.Zero
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Recalculate sets every line price to quantity times unit price and sums the total.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for i := range c.Lines {
		line := &c.Lines[i]
		line.Price = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(line.Price)
	}
	c.Total = total
}

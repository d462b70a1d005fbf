// internal/domain/catalog/entity.go
package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product represents a bakery product as served by the API
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"` // percent, 0-100
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Slug        string          `json:"slug"`
	CreatedAt   time.Time       `json:"created_at"`

	Category *Category `json:"category,omitempty"`
}

// Category represents a product category
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// EffectivePrice returns price × (1 − discount/100), rounded to whole Rupiah
func (p Product) EffectivePrice() decimal.Decimal {
	if p.Discount.LessThanOrEqual(decimal.Zero) {
		return p.Price.Round(0)
	}
	factor := hundred.Sub(p.Discount).Div(hundred)
	return p.Price.Mul(factor).Round(0)
}

// InStock reports whether at least one unit is available
func (p Product) InStock() bool {
	return p.Stock > 0
}

// CategoryName returns the embedded category name, if any
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

func (p Product) matches(term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

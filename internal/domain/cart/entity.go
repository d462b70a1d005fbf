// internal/domain/cart/entity.go
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/domain/catalog"
)

// Item represents a cart line item as served by the API
type Item struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"` // Unit price at time of adding
	Subtotal  decimal.Decimal `json:"subtotal"`

	Product *catalog.Product `json:"product,omitempty"`
}

// LineTotal returns price × qty
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Stock returns the denormalized product stock, or -1 when unknown
func (i Item) Stock() int {
	if i.Product == nil {
		return -1
	}
	return i.Product.Stock
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount     int             `json:"item_count"`     // Number of lines
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	Total         decimal.Decimal `json:"total"`          // Sum of subtotals
}

// CalculateTotals sums the subtotals of items
func CalculateTotals(items []Item) Totals {
	totals := Totals{ItemCount: len(items), Total: decimal.Zero}
	for _, item := range items {
		totals.TotalQuantity += item.Qty
		totals.Total = totals.Total.Add(item.Subtotal)
	}
	return totals
}

type addRequest struct {
	UserID    int64           `json:"user_id"`
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type updateRequest struct {
	Qty      int             `json:"qty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

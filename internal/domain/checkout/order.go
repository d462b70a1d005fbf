// internal/domain/checkout/order.go
package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/domain/cart"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
	"github.com/your-org/bakery-storefront/internal/domain/order"
)

// Source identifies the entry point of a checkout run
type Source string

const (
	SourceCart   Source = "cart"
	SourceBuyNow Source = "buy_now"
	SourceStaff  Source = "staff"
)

// Line is one product of a checkout with the stock seen when it was selected.
// Stock is -1 when unknown; CartItemID is zero outside the cart path.
type Line struct {
	ProductID  int64
	Name       string
	Qty        int
	Price      decimal.Decimal
	Stock      int
	CartItemID int64
}

// Subtotal returns price × qty
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Selection is a product and quantity chosen outside the cart
type Selection struct {
	Product catalog.Product `json:"product"`
	Qty     int             `json:"qty"`
}

// LinesFromCart converts cart items into checkout lines
func LinesFromCart(items []cart.Item) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		line := Line{
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			Price:      item.Price,
			Stock:      item.Stock(),
			CartItemID: item.ID,
		}
		if item.Product != nil {
			line.Name = item.Product.Name
		}
		lines = append(lines, line)
	}
	return lines
}

// LinesFromSelections converts direct selections, priced at the effective price
func LinesFromSelections(selections []Selection) []Line {
	lines := make([]Line, 0, len(selections))
	for _, sel := range selections {
		lines = append(lines, Line{
			ProductID: sel.Product.ID,
			Name:      sel.Product.Name,
			Qty:       sel.Qty,
			Price:     sel.Product.EffectivePrice(),
			Stock:     sel.Product.Stock,
		})
	}
	return lines
}

// BuildOrder assembles the order-creation payload. The total is the sum of
// the item subtotals; status starts at pending and payment at unpaid.
func BuildOrder(userID int64, lines []Line, now time.Time) order.CreateRequest {
	items := make([]order.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, order.OrderItem{
			ProductID: line.ProductID,
			Qty:       line.Qty,
			Price:     line.Price,
			Subtotal:  line.Subtotal(),
		})
	}

	return order.CreateRequest{
		UserID:        userID,
		OrderDate:     now.Format(order.OrderDateLayout),
		TotalPrice:    order.ItemsTotal(items),
		Status:        order.OrderStatusPending,
		PaymentStatus: order.PaymentStatusUnpaid,
		OrderItems:    items,
	}
}

// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/domain/catalog"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus represents the payment axis of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// OrderDateLayout is the wire format of order_date
const OrderDateLayout = "2006-01-02 15:04:05"

// Order represents an order as served by the API
type Order struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	OrderNumber   string          `json:"order_number"`
	OrderDate     string          `json:"order_date"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Items         []OrderItem     `json:"order_items"`
	CreatedAt     time.Time       `json:"created_at"`

	User *Customer `json:"user,omitempty"`
}

// OrderItem is an immutable price/quantity snapshot taken at order creation
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`

	Product *catalog.Product `json:"product,omitempty"`
}

// Customer is the user embedded in staff order listings
type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CreateRequest is the order-creation payload
type CreateRequest struct {
	UserID        int64           `json:"user_id"`
	OrderDate     string          `json:"order_date"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	OrderItems    []OrderItem     `json:"order_items"`
}

// UpdateRequest is the staff edit form of an order
type UpdateRequest struct {
	Status        OrderStatus   `json:"status,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
}

// ItemsTotal sums the item subtotals
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// IsPaid reports whether the payment axis reached paid
func (o Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// CustomerName returns the embedded customer name, if any
func (o Order) CustomerName() string {
	if o.User == nil {
		return ""
	}
	return o.User.Name
}

// internal/domain/payment/entity.go
package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/domain/order"
)

// Method is how a customer pays
type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodQRIS         Method = "qris"
	MethodGoPay        Method = "gopay"
	MethodCard         Method = "card"
)

// Valid reports whether m is a known method
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodQRIS, MethodGoPay, MethodCard:
		return true
	}
	return false
}

// IsGateway reports whether m is collected by the hosted gateway widget
func (m Method) IsGateway() bool {
	return m.Valid() && m != MethodCash
}

// Status is the state of one payment attempt
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
)

// Payment is one payment attempt against an order
type Payment struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod Method          `json:"payment_method"`
	Status        Status          `json:"status"`
	SnapToken     string          `json:"snap_token,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	Order *order.Order `json:"order,omitempty"`
}

type createRequest struct {
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod Method          `json:"payment_method"`
	Status        Status          `json:"status"`
}

type tokenRequest struct {
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod Method          `json:"payment_method"`
}

// TokenResponse is the gateway session issued by the API
type TokenResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// GatewayStatus is the API's view of a gateway payment
type GatewayStatus struct {
	OrderID           int64               `json:"order_id"`
	PaymentStatus     order.PaymentStatus `json:"payment_status"`
	TransactionStatus string              `json:"transaction_status,omitempty"`
}

// Paid reports whether the gateway settled the payment
func (g GatewayStatus) Paid() bool {
	if g.PaymentStatus == order.PaymentStatusPaid {
		return true
	}
	return g.TransactionStatus == "settlement" || g.TransactionStatus == "capture"
}

type cashPaidRequest struct {
	OrderID int64           `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
}

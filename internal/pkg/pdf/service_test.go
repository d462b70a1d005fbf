package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
	"github.com/your-org/bakery-storefront/internal/domain/order"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		amount decimal.Decimal
		want   string
	}{
		{decimal.NewFromInt(0), "Rp 0"},
		{decimal.NewFromInt(500), "Rp 500"},
		{decimal.NewFromInt(35000), "Rp 35.000"},
		{decimal.NewFromInt(1250000), "Rp 1.250.000"},
		{decimal.RequireFromString("9999.6"), "Rp 10.000"},
		{decimal.NewFromInt(-15000), "-Rp 15.000"},
	}
	for _, tt := range tests {
		if got := FormatRupiah(tt.amount); got != tt.want {
			t.Errorf("FormatRupiah(%s): expected %q, got %q", tt.amount, tt.want, got)
		}
	}
}

func TestService_RenderHTML(t *testing.T) {
	cfg := &config.Config{Receipt: config.ReceiptConfig{
		StoreName:    "Toko Roti Harum",
		StoreAddress: "Jl. Merdeka 1",
		StorePhone:   "021-555",
	}}
	svc := NewService(cfg)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }

	o := &order.Order{
		ID:            77,
		OrderNumber:   "ORD-0077",
		OrderDate:     "2025-03-14 09:30:00",
		TotalPrice:    decimal.NewFromInt(35000),
		Status:        order.OrderStatusPending,
		PaymentStatus: order.PaymentStatusUnpaid,
		Items: []order.OrderItem{
			{ProductID: 1, Qty: 2, Price: decimal.NewFromInt(10000), Subtotal: decimal.NewFromInt(20000),
				Product: &catalog.Product{ID: 1, Name: "Roti Sobek"}},
			{ProductID: 2, Qty: 1, Price: decimal.NewFromInt(15000), Subtotal: decimal.NewFromInt(15000)},
		},
	}

	html, err := svc.RenderHTML(o)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, want := range []string{
		"Toko Roti Harum",
		"RCP-ORD-0077",
		"Roti Sobek",
		"Product #2",
		"2 x Rp 10.000",
		"Rp 35.000",
		"Printed 2025-03-14 10:00:00",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected receipt to contain %q", want)
		}
	}
}

func TestReceiptNumber_FallsBackToID(t *testing.T) {
	if got := receiptNumber(&order.Order{ID: 42}); got != "RCP-000042" {
		t.Errorf("Expected RCP-000042, got %s", got)
	}
}

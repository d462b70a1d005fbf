// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/domain/order"
)

// Service renders order receipts
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new receipt service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string        `json:"receipt_number"`
	PrintedAt     string        `json:"printed_at"`
	Order         *order.Order  `json:"order"`
	Lines         []ReceiptLine `json:"lines"`
	Store         StoreInfo     `json:"store"`
}

// ReceiptLine is one printed order item
type ReceiptLine struct {
	Name     string          `json:"name"`
	Qty      int             `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// StoreInfo represents the bakery printed in the receipt header
type StoreInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Receipt generates a PDF receipt for an order
func (s *Service) Receipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(203)
	pdfg.PageWidth.Set(80)
	pdfg.PageHeight.Set(200)
	pdfg.MarginLeft.Set(4)
	pdfg.MarginRight.Set(4)
	pdfg.Grayscale.Set(true)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the receipt markup for an order
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	data := ReceiptData{
		ReceiptNumber: receiptNumber(o),
		PrintedAt:     s.now().Format(order.OrderDateLayout),
		Order:         o,
		Store: StoreInfo{
			Name:    s.config.Receipt.StoreName,
			Address: s.config.Receipt.StoreAddress,
			Phone:   s.config.Receipt.StorePhone,
		},
	}
	for _, item := range o.Items {
		name := fmt.Sprintf("Product #%d", item.ProductID)
		if item.Product != nil && item.Product.Name != "" {
			name = item.Product.Name
		}
		data.Lines = append(data.Lines, ReceiptLine{
			Name:     name,
			Qty:      item.Qty,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		})
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func receiptNumber(o *order.Order) string {
	if o.OrderNumber != "" {
		return "RCP-" + o.OrderNumber
	}
	return fmt.Sprintf("RCP-%06d", o.ID)
}

// FormatRupiah formats an amount as whole Rupiah with dot thousands separators
func FormatRupiah(amount decimal.Decimal) string {
	digits := amount.Round(0).Abs().StringFixed(0)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if amount.Round(0).IsNegative() {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"rupiah": FormatRupiah,
	"itoa":   strconv.Itoa,
}).Parse(receiptHTML))

// Receipt HTML template
const receiptHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: monospace; font-size: 11px; margin: 0; color: #000; }
        .center { text-align: center; }
        .store-name { font-size: 14px; font-weight: bold; }
        table { width: 100%; border-collapse: collapse; }
        td { padding: 2px 0; vertical-align: top; }
        .right { text-align: right; }
        .divider { border-top: 1px dashed #000; margin: 6px 0; }
        .total td { font-weight: bold; font-size: 12px; }
    </style>
</head>
<body>
    <div class="center">
        <div class="store-name">{{.Store.Name}}</div>
        {{if .Store.Address}}<div>{{.Store.Address}}</div>{{end}}
        {{if .Store.Phone}}<div>Tel. {{.Store.Phone}}</div>{{end}}
    </div>
    <div class="divider"></div>
    <table>
        <tr><td>Receipt</td><td class="right">{{.ReceiptNumber}}</td></tr>
        <tr><td>Order date</td><td class="right">{{.Order.OrderDate}}</td></tr>
        {{if .Order.User}}<tr><td>Customer</td><td class="right">{{.Order.User.Name}}</td></tr>{{end}}
        <tr><td>Status</td><td class="right">{{.Order.Status}} / {{.Order.PaymentStatus}}</td></tr>
    </table>
    <div class="divider"></div>
    <table>
        {{range .Lines}}
        <tr><td colspan="2">{{.Name}}</td></tr>
        <tr><td>{{itoa .Qty}} x {{rupiah .Price}}</td><td class="right">{{rupiah .Subtotal}}</td></tr>
        {{end}}
    </table>
    <div class="divider"></div>
    <table>
        <tr class="total"><td>TOTAL</td><td class="right">{{rupiah .Order.TotalPrice}}</td></tr>
    </table>
    <div class="divider"></div>
    <div class="center">Printed {{.PrintedAt}}</div>
    <div class="center">Thank you for your order</div>
</body>
</html>
`

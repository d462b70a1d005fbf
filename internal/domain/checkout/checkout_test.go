package checkout

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/api/apitest"
	"github.com/your-org/bakery-storefront/internal/domain/cart"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
	"github.com/your-org/bakery-storefront/internal/domain/journal"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/pkg/logger"
	"github.com/your-org/bakery-storefront/internal/pkg/notify"
)

type memoryJournal struct {
	mu   sync.Mutex
	runs []journal.Run
}

func (m *memoryJournal) Record(_ context.Context, run *journal.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *memoryJournal) ListByStatus(_ context.Context, status journal.Status, _ int) ([]journal.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journal.Run
	for _, run := range m.runs {
		if run.Status == status {
			out = append(out, run)
		}
	}
	return out, nil
}

func cartItems() []cart.Item {
	return []cart.Item{
		{ID: 5, UserID: 3, ProductID: 1, Qty: 2, Price: decimal.NewFromInt(10000), Subtotal: decimal.NewFromInt(20000),
			Product: &catalog.Product{ID: 1, Name: "Roti Sobek", Stock: 4}},
		{ID: 6, UserID: 3, ProductID: 2, Qty: 1, Price: decimal.NewFromInt(15000), Subtotal: decimal.NewFromInt(15000),
			Product: &catalog.Product{ID: 2, Name: "Bolu Pandan", Stock: 9}},
	}
}

type checkoutFixture struct {
	service *Service
	srv     *apitest.Server
	journal *memoryJournal
	feed    *notify.Feed
	req     Request
}

func setupCheckoutTest(t *testing.T, compensate bool) *checkoutFixture {
	t.Helper()
	srv := apitest.NewServer(t)
	client := srv.Client()
	log := logger.Discard()

	j := &memoryJournal{}
	svc := NewService(
		order.NewService(client, log),
		catalog.NewService(client, nil, log),
		cart.NewLines(client),
		j,
		compensate,
		log,
	)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

	feed := notify.NewFeed(0, nil)
	return &checkoutFixture{
		service: svc,
		srv:     srv,
		journal: j,
		feed:    feed,
		req:     Request{Device: "device-1", Tokens: apitest.Customer(), Notifier: feed},
	}
}

func (f *checkoutFixture) acceptOrder(captured *order.CreateRequest) {
	f.srv.HandleFunc(http.MethodPost, "/orders", func(call apitest.Call) (int, any) {
		if captured != nil {
			call.Decode(captured)
		}
		return http.StatusCreated, map[string]any{"data": map[string]any{
			"id": 77, "user_id": 3, "total_price": 35000, "status": "pending", "payment_status": "unpaid",
		}}
	})
}

func (f *checkoutFixture) acceptAll() {
	for _, path := range []string{"/product/1", "/product/2"} {
		f.srv.Handle(http.MethodPut, path, http.StatusOK, map[string]string{"message": "updated"})
	}
	for _, path := range []string{"/cart/5", "/cart/6"} {
		f.srv.Handle(http.MethodDelete, path, http.StatusOK, map[string]string{"message": "removed"})
	}
}

func stockSent(t *testing.T, call apitest.Call) int {
	t.Helper()
	var body map[string]int
	if err := call.Decode(&body); err != nil {
		t.Fatalf("Failed to decode stock body: %v", err)
	}
	return body["stock"]
}

func TestBuildOrder(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	req := BuildOrder(3, LinesFromCart(cartItems()), now)

	if req.UserID != 3 {
		t.Errorf("Expected user 3, got %d", req.UserID)
	}
	if !req.TotalPrice.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("Expected total 35000, got %s", req.TotalPrice)
	}
	if !req.TotalPrice.Equal(order.ItemsTotal(req.OrderItems)) {
		t.Errorf("Expected total to equal the sum of item subtotals")
	}
	if req.Status != order.OrderStatusPending || req.PaymentStatus != order.PaymentStatusUnpaid {
		t.Errorf("Expected pending/unpaid, got %s/%s", req.Status, req.PaymentStatus)
	}
	if req.OrderDate != "2025-03-14 09:30:00" {
		t.Errorf("Expected order date 2025-03-14 09:30:00, got %s", req.OrderDate)
	}
	if len(req.OrderItems) != 2 || !req.OrderItems[0].Subtotal.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("Expected two items with first subtotal 20000, got %+v", req.OrderItems)
	}
}

func TestService_CheckoutCart_TwoItems(t *testing.T) {
	f := setupCheckoutTest(t, false)
	var created order.CreateRequest
	f.acceptOrder(&created)
	f.acceptAll()

	result, err := f.service.CheckoutCart(context.Background(), f.req, 3, cartItems())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !created.TotalPrice.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("Expected total_price 35000, got %s", created.TotalPrice)
	}
	if len(created.OrderItems) != 2 {
		t.Errorf("Expected 2 order items, got %d", len(created.OrderItems))
	}
	if created.Status != order.OrderStatusPending || created.PaymentStatus != order.PaymentStatusUnpaid {
		t.Errorf("Expected pending/unpaid, got %s/%s", created.Status, created.PaymentStatus)
	}

	if calls := f.srv.CallsTo(http.MethodPut, "/product/1"); len(calls) != 1 || stockSent(t, calls[0]) != 2 {
		t.Errorf("Expected product 1 stock set to 2 once, got %d calls", len(calls))
	}
	if calls := f.srv.CallsTo(http.MethodPut, "/product/2"); len(calls) != 1 || stockSent(t, calls[0]) != 8 {
		t.Errorf("Expected product 2 stock set to 8 once, got %d calls", len(calls))
	}
	for _, path := range []string{"/cart/5", "/cart/6"} {
		if calls := f.srv.CallsTo(http.MethodDelete, path); len(calls) != 1 {
			t.Errorf("Expected one DELETE %s, got %d", path, len(calls))
		}
	}
	if key := f.srv.CallsTo(http.MethodPost, "/orders")[0].Header.Get("Idempotency-Key"); key != result.RunID.String() {
		t.Errorf("Expected idempotency key %s, got %q", result.RunID, key)
	}

	if result.Order.ID != 77 {
		t.Errorf("Expected order 77, got %d", result.Order.ID)
	}
	if !result.ClearCart || !result.ReloadHint {
		t.Error("Expected cart checkout to clear the cart and hint a reload")
	}

	notes := f.feed.Drain()
	if len(notes) != 1 || notes[0].Level != notify.LevelSuccess {
		t.Errorf("Expected one success notification, got %+v", notes)
	}
	if len(f.journal.runs) != 1 || f.journal.runs[0].Status != journal.StatusSucceeded {
		t.Fatalf("Expected one succeeded journal run, got %+v", f.journal.runs)
	}
	if got := len(f.journal.runs[0].Steps); got != 5 {
		t.Errorf("Expected 5 journaled steps, got %d", got)
	}
}

func TestService_CheckoutCart_StockLimitMakesNoCalls(t *testing.T) {
	f := setupCheckoutTest(t, false)
	items := cartItems()
	items[0].Qty = 5

	_, err := f.service.CheckoutCart(context.Background(), f.req, 3, items)
	if api.KindOf(err) != api.KindValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
	if n := len(f.srv.Calls()); n != 0 {
		t.Errorf("Expected no API calls, got %d", n)
	}
	if notes := f.feed.Drain(); len(notes) != 1 || notes[0].Message != "Stock limit reached for Roti Sobek" {
		t.Errorf("Expected a stock limit notification, got %+v", notes)
	}
}

func TestService_CheckoutCart_EmptyCart(t *testing.T) {
	f := setupCheckoutTest(t, false)

	_, err := f.service.CheckoutCart(context.Background(), f.req, 3, nil)
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("Expected ErrEmptyCart, got %v", err)
	}
	if n := len(f.srv.Calls()); n != 0 {
		t.Errorf("Expected no API calls, got %d", n)
	}
}

func TestService_CheckoutCart_RequiresSignIn(t *testing.T) {
	f := setupCheckoutTest(t, false)

	_, err := f.service.CheckoutCart(context.Background(), f.req, 0, cartItems())
	if api.KindOf(err) != api.KindUnauthorized {
		t.Errorf("Expected unauthorized error, got %v", err)
	}
}

func TestService_CheckoutCart_OrderFailureLeavesCartUntouched(t *testing.T) {
	f := setupCheckoutTest(t, false)
	f.srv.Handle(http.MethodPost, "/orders", http.StatusInternalServerError, map[string]string{"message": "database down"})
	f.acceptAll()

	_, err := f.service.CheckoutCart(context.Background(), f.req, 3, cartItems())
	if api.KindOf(err) != api.KindServer {
		t.Errorf("Expected server error, got %v", err)
	}
	if IsPartial(err) {
		t.Error("Expected a total failure, not a partial one")
	}
	for _, c := range f.srv.Calls() {
		if c.Method != http.MethodPost {
			t.Errorf("Expected no follow-up calls, got %s %s", c.Method, c.Path)
		}
	}
	if len(f.journal.runs) != 1 || f.journal.runs[0].Status != journal.StatusFailed {
		t.Errorf("Expected one failed journal run, got %+v", f.journal.runs)
	}
	if notes := f.feed.Drain(); len(notes) != 1 || notes[0].Message != "database down" {
		t.Errorf("Expected the server message as notification, got %+v", notes)
	}
}

func TestService_CheckoutCart_PartialFailure(t *testing.T) {
	f := setupCheckoutTest(t, false)
	f.acceptOrder(nil)
	f.acceptAll()
	f.srv.Handle(http.MethodPut, "/product/2", http.StatusInternalServerError, map[string]string{"message": "boom"})

	_, err := f.service.CheckoutCart(context.Background(), f.req, 3, cartItems())

	var perr *PartialError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *PartialError, got %v", err)
	}
	if perr.OrderID != 77 {
		t.Errorf("Expected order 77, got %d", perr.OrderID)
	}
	if perr.Failed != "update_stock:2" {
		t.Errorf("Expected failed step update_stock:2, got %s", perr.Failed)
	}
	want := []string{"create_order:0", "update_stock:1", "delete_cart_line:5"}
	if len(perr.Completed) != len(want) {
		t.Fatalf("Expected completed %v, got %v", want, perr.Completed)
	}
	for i := range want {
		if perr.Completed[i] != want[i] {
			t.Errorf("Expected completed[%d] = %s, got %s", i, want[i], perr.Completed[i])
		}
	}
	if perr.Compensated {
		t.Error("Expected no compensation by default")
	}
	if calls := f.srv.CallsTo(http.MethodPatch, "/orders/77/cancel"); len(calls) != 0 {
		t.Errorf("Expected order not to be cancelled, got %d calls", len(calls))
	}
	if calls := f.srv.CallsTo(http.MethodDelete, "/cart/6"); len(calls) != 0 {
		t.Errorf("Expected pipeline to stop before the second cart line, got %d calls", len(calls))
	}

	if len(f.journal.runs) != 1 || f.journal.runs[0].Status != journal.StatusPartial {
		t.Errorf("Expected one partial journal run, got %+v", f.journal.runs)
	}
	if notes := f.feed.Drain(); len(notes) != 1 || notes[0].Message != msgCheckoutFailed {
		t.Errorf("Expected the generic failure notification, got %+v", notes)
	}
}

func TestService_CheckoutCart_PartialFailureCompensates(t *testing.T) {
	f := setupCheckoutTest(t, true)
	f.acceptOrder(nil)
	f.acceptAll()
	f.srv.Handle(http.MethodPut, "/product/2", http.StatusInternalServerError, map[string]string{"message": "boom"})
	f.srv.Handle(http.MethodPost, "/cart", http.StatusCreated, map[string]string{"message": "added"})
	f.srv.Handle(http.MethodPatch, "/orders/77/cancel", http.StatusOK, map[string]string{"message": "cancelled"})

	_, err := f.service.CheckoutCart(context.Background(), f.req, 3, cartItems())

	var perr *PartialError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *PartialError, got %v", err)
	}
	if !perr.Compensated {
		t.Error("Expected compensation to complete")
	}

	stockCalls := f.srv.CallsTo(http.MethodPut, "/product/1")
	if len(stockCalls) != 2 || stockSent(t, stockCalls[1]) != 4 {
		t.Errorf("Expected product 1 stock restored to 4, got %d calls", len(stockCalls))
	}
	readd := f.srv.CallsTo(http.MethodPost, "/cart")
	if len(readd) != 1 {
		t.Fatalf("Expected cart line re-added once, got %d", len(readd))
	}
	var line map[string]any
	readd[0].Decode(&line)
	if line["product_id"] != float64(1) || line["qty"] != float64(2) {
		t.Errorf("Expected product 1 qty 2 re-added, got %v", line)
	}
	if calls := f.srv.CallsTo(http.MethodPatch, "/orders/77/cancel"); len(calls) != 1 {
		t.Errorf("Expected order cancelled once, got %d", len(calls))
	}
	if !f.journal.runs[0].Compensated {
		t.Error("Expected journal run to be marked compensated")
	}
}

func TestService_PlaceForCustomer_RequiresCustomer(t *testing.T) {
	f := setupCheckoutTest(t, false)
	f.req.Tokens = apitest.Staff()

	sel := []Selection{{Product: catalog.Product{ID: 1, Name: "Roti Sobek", Price: decimal.NewFromInt(10000), Stock: 4}, Qty: 1}}
	_, err := f.service.PlaceForCustomer(context.Background(), f.req, 0, sel)
	if !errors.Is(err, ErrCustomerRequired) {
		t.Errorf("Expected ErrCustomerRequired, got %v", err)
	}
	if n := len(f.srv.Calls()); n != 0 {
		t.Errorf("Expected no API calls, got %d", n)
	}
	if notes := f.feed.Drain(); len(notes) != 1 || notes[0].Level != notify.LevelError {
		t.Errorf("Expected one error notification, got %+v", notes)
	}
}

func TestService_BuyNow_DoesNotTouchCart(t *testing.T) {
	f := setupCheckoutTest(t, false)
	var created order.CreateRequest
	f.acceptOrder(&created)
	f.acceptAll()

	product := catalog.Product{ID: 1, Name: "Roti Sobek", Price: decimal.NewFromInt(12000), Discount: decimal.NewFromInt(25), Stock: 4}
	result, err := f.service.BuyNow(context.Background(), f.req, 3, Selection{Product: product, Qty: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.ClearCart {
		t.Error("Expected buy-now not to clear the cart")
	}
	if !created.TotalPrice.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Expected total at effective price 9000, got %s", created.TotalPrice)
	}
	for _, c := range f.srv.Calls() {
		if c.Method == http.MethodDelete {
			t.Errorf("Expected no cart calls, got %s %s", c.Method, c.Path)
		}
	}
}

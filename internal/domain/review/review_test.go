package review

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/api/apitest"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/pkg/logger"
)

func setupReviewTest(t *testing.T) (*Service, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	return NewService(srv.Client(), logger.Discard()), srv
}

func TestInput_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"valid", Input{ProductID: 1, Rating: 5, ReviewText: "Lembut sekali"}, nil},
		{"rating zero", Input{ProductID: 1, Rating: 0, ReviewText: "x"}, ErrInvalidRating},
		{"rating six", Input{ProductID: 1, Rating: 6, ReviewText: "x"}, ErrInvalidRating},
		{"blank text", Input{ProductID: 1, Rating: 4, ReviewText: "   "}, ErrTextRequired},
		{"no product", Input{Rating: 4, ReviewText: "x"}, ErrProductRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_Create_AddsToReviewedSet(t *testing.T) {
	svc, srv := setupReviewTest(t)
	srv.Handle(http.MethodPost, "/reviews", http.StatusCreated, map[string]any{"data": map[string]any{
		"id": 9, "product_id": 1, "rating": 5, "review_text": "Enak",
	}})

	set := NewReviewedSet()
	r, err := svc.Create(context.Background(), apitest.Customer(), set, Input{ProductID: 1, Rating: 5, ReviewText: " Enak "})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.ID != 9 {
		t.Errorf("Expected review 9, got %d", r.ID)
	}
	if !set.Has(1) {
		t.Error("Expected product 1 in reviewed set")
	}

	var body createRequest
	srv.CallsTo(http.MethodPost, "/reviews")[0].Decode(&body)
	if body.ReviewText != "Enak" {
		t.Errorf("Expected trimmed text, got %q", body.ReviewText)
	}

	_, err = svc.Create(context.Background(), apitest.Customer(), set, Input{ProductID: 1, Rating: 4, ReviewText: "Lagi"})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("Expected ErrAlreadyReviewed, got %v", err)
	}
	if n := len(srv.CallsTo(http.MethodPost, "/reviews")); n != 1 {
		t.Errorf("Expected one create call, got %d", n)
	}
}

func TestService_CreatePurchased_RejectsUnpaidProduct(t *testing.T) {
	svc, srv := setupReviewTest(t)
	srv.Handle(http.MethodPost, "/reviews", http.StatusCreated, map[string]any{"data": map[string]any{
		"id": 9, "product_id": 1, "rating": 5, "review_text": "Enak",
	}})

	purchased := func(productID int64) bool { return productID == 1 }

	set := NewReviewedSet()
	_, err := svc.CreatePurchased(context.Background(), apitest.Customer(), set, purchased, Input{ProductID: 2, Rating: 5, ReviewText: "Enak"})
	if !errors.Is(err, ErrNotPurchased) {
		t.Errorf("Expected ErrNotPurchased, got %v", err)
	}
	if n := len(srv.CallsTo(http.MethodPost, "/reviews")); n != 0 {
		t.Errorf("Expected no create call, got %d", n)
	}

	if _, err := svc.CreatePurchased(context.Background(), apitest.Customer(), set, purchased, Input{ProductID: 1, Rating: 5, ReviewText: "Enak"}); err != nil {
		t.Fatalf("Expected no error for a paid product, got %v", err)
	}
	if !set.Has(1) {
		t.Error("Expected product 1 in reviewed set")
	}
}

func TestService_Create_FailureKeepsPrompt(t *testing.T) {
	svc, srv := setupReviewTest(t)
	srv.Handle(http.MethodPost, "/reviews", http.StatusUnprocessableEntity, map[string]string{"message": "Order not paid"})

	set := NewReviewedSet()
	_, err := svc.Create(context.Background(), apitest.Customer(), set, Input{ProductID: 1, Rating: 5, ReviewText: "Enak"})
	if api.KindOf(err) != api.KindValidation || api.MessageOf(err) != "Order not paid" {
		t.Errorf("Expected validation error with server message, got %v", err)
	}
	if set.Has(1) {
		t.Error("Expected product 1 not to be marked reviewed")
	}
}

func TestService_LoadReviewed_SuppressesPrompts(t *testing.T) {
	svc, srv := setupReviewTest(t)
	srv.Handle(http.MethodGet, "/reviews/user", http.StatusOK, []map[string]any{
		{"id": 1, "product_id": 2, "rating": 5, "review_text": "ok"},
	})

	set := NewReviewedSet()
	if err := svc.LoadReviewed(context.Background(), apitest.Customer(), set); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	orders := []order.Order{{
		ID:            1,
		PaymentStatus: order.PaymentStatusPaid,
		Items:         []order.OrderItem{{ProductID: 1, Qty: 1}, {ProductID: 2, Qty: 1}},
	}}
	items := order.ReviewableItems(orders, set.Has)
	if len(items) != 1 || items[0].ProductID != 1 {
		t.Errorf("Expected only product 1 to be reviewable, got %+v", items)
	}
}

func TestService_LoadReviewed_RequiresCustomer(t *testing.T) {
	svc, srv := setupReviewTest(t)

	err := svc.LoadReviewed(context.Background(), apitest.Staff(), NewReviewedSet())
	if api.KindOf(err) != api.KindUnauthorized {
		t.Errorf("Expected unauthorized error, got %v", err)
	}
	if n := len(srv.Calls()); n != 0 {
		t.Errorf("Expected no API calls, got %d", n)
	}
}

func TestService_Reply_CreateOrUpdate(t *testing.T) {
	svc, srv := setupReviewTest(t)
	srv.Handle(http.MethodPost, "/reviews/4/reply", http.StatusOK, map[string]string{"message": "ok"})
	srv.Handle(http.MethodPut, "/reviews/4/reply", http.StatusOK, map[string]string{"message": "ok"})

	if err := svc.Reply(context.Background(), apitest.Staff(), Review{ID: 4}, "Terima kasih"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := svc.Reply(context.Background(), apitest.Staff(), Review{ID: 4, Reply: "Terima kasih"}, "Sama-sama"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n := len(srv.CallsTo(http.MethodPost, "/reviews/4/reply")); n != 1 {
		t.Errorf("Expected one reply create, got %d", n)
	}
	if n := len(srv.CallsTo(http.MethodPut, "/reviews/4/reply")); n != 1 {
		t.Errorf("Expected one reply update, got %d", n)
	}

	if err := svc.Reply(context.Background(), apitest.Staff(), Review{ID: 4}, " "); !errors.Is(err, ErrReplyRequired) {
		t.Errorf("Expected ErrReplyRequired, got %v", err)
	}
}

func TestReviewedSet_IDs(t *testing.T) {
	set := NewReviewedSet()
	set.Add(3)
	set.Add(1)
	set.Add(3)

	ids := set.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("Expected [1 3], got %v", ids)
	}
}

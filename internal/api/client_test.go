package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/your-org/bakery-storefront/internal/pkg/logger"
)

type staticTokens struct {
	staff    string
	customer string
}

func (s staticTokens) StaffToken() string    { return s.staff }
func (s staticTokens) CustomerToken() string { return s.customer }

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.RequestURI(),
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	status, resp := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, resp)
}

func (f *fakeAPI) calls() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func setupClientTest(t *testing.T, status int, body string) (*Client, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{status: status, body: body}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client := NewClientWithHTTP(srv.URL+"/", "test-agent", srv.Client(), logger.Discard())
	return client, fake
}

func TestBearerFor_SharedPrefersCustomer(t *testing.T) {
	token, ok := BearerFor(Shared, staticTokens{staff: "s", customer: "c"})
	if !ok || token != "c" {
		t.Errorf("Expected customer token, got %q (ok=%v)", token, ok)
	}

	token, ok = BearerFor(Shared, staticTokens{staff: "s"})
	if !ok || token != "s" {
		t.Errorf("Expected staff token fallback, got %q (ok=%v)", token, ok)
	}

	token, ok = BearerFor(Shared, staticTokens{})
	if !ok || token != "" {
		t.Errorf("Expected anonymous shared call, got %q (ok=%v)", token, ok)
	}
}

func TestBearerFor_StaffOnlyIgnoresCustomer(t *testing.T) {
	if _, ok := BearerFor(StaffOnly, staticTokens{customer: "c"}); ok {
		t.Error("Expected staff-only endpoint to reject a customer-only session")
	}
	if token, ok := BearerFor(StaffOnly, staticTokens{staff: "s", customer: "c"}); !ok || token != "s" {
		t.Errorf("Expected staff token, got %q", token)
	}
	if _, ok := BearerFor(CustomerOnly, staticTokens{staff: "s"}); ok {
		t.Error("Expected customer-only endpoint to reject a staff-only session")
	}
}

func TestClient_Do_AttachesHeadersAndUnwrapsData(t *testing.T) {
	client, fake := setupClientTest(t, http.StatusOK, `{"data":{"id":7,"name":"Croissant"}}`)

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	ctx := WithRequestID(context.Background(), "req-1")
	err := client.Do(ctx, staticTokens{customer: "cust-token"}, Call{
		Endpoint: ProductGet,
		PathArgs: []string{"7"},
	}, &out)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if out.ID != 7 || out.Name != "Croissant" {
		t.Errorf("Expected unwrapped product, got %+v", out)
	}

	calls := fake.calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}
	if calls[0].Path != "/product/7" {
		t.Errorf("Expected path /product/7, got %s", calls[0].Path)
	}
	if got := calls[0].Header.Get("Authorization"); got != "Bearer cust-token" {
		t.Errorf("Expected customer bearer, got %q", got)
	}
	if got := calls[0].Header.Get("X-Request-ID"); got != "req-1" {
		t.Errorf("Expected request id to be forwarded, got %q", got)
	}
	if got := calls[0].Header.Get("User-Agent"); got != "test-agent" {
		t.Errorf("Expected user agent, got %q", got)
	}
}

func TestClient_Do_PlainResponse(t *testing.T) {
	client, _ := setupClientTest(t, http.StatusOK, `[{"id":1},{"id":2}]`)

	var out []struct {
		ID int `json:"id"`
	}
	if err := client.Do(context.Background(), NoTokens{}, Call{Endpoint: CategoryList}, &out); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(out) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(out))
	}
}

func TestClient_Do_RejectsOversizedResponse(t *testing.T) {
	client, _ := setupClientTest(t, http.StatusOK, `{"data":[`+strings.Repeat(`{"id":1},`, 20)+`{"id":2}]}`)
	client.maxResponse = 64

	var out []map[string]int
	err := client.Do(context.Background(), staticTokens{}, Call{Endpoint: ProductList}, &out)
	if KindOf(err) != KindServer {
		t.Errorf("Expected server error for an oversized body, got %v", err)
	}
	if out != nil {
		t.Errorf("Expected nothing decoded, got %d items", len(out))
	}
}

func TestClient_Do_StaffOnlyWithoutTokenMakesNoCall(t *testing.T) {
	client, fake := setupClientTest(t, http.StatusOK, `{}`)

	err := client.Do(context.Background(), staticTokens{customer: "c"}, Call{Endpoint: OrderAll}, nil)
	if KindOf(err) != KindUnauthorized {
		t.Errorf("Expected unauthorized, got %v", err)
	}
	if n := len(fake.calls()); n != 0 {
		t.Errorf("Expected 0 calls, got %d", n)
	}
}

func TestClient_Do_MapsStatusToKind(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		kind    Kind
		message string
	}{
		{http.StatusBadRequest, `{"message":"Stock is not enough"}`, KindValidation, "Stock is not enough"},
		{http.StatusConflict, `{}`, KindValidation, msgValidation},
		{http.StatusUnprocessableEntity, `{"error":"name is required"}`, KindValidation, "name is required"},
		{http.StatusUnauthorized, `{"message":"Unauthenticated."}`, KindUnauthorized, "Unauthenticated."},
		{http.StatusForbidden, ``, KindUnauthorized, msgUnauthorized},
		{http.StatusNotFound, `{"message":"Order not found"}`, KindNotFound, "Order not found"},
		{http.StatusInternalServerError, `not json`, KindServer, msgServer},
		{http.StatusBadGateway, `{"error":{"code":1}}`, KindServer, msgServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			client, _ := setupClientTest(t, tt.status, tt.body)

			err := client.Do(context.Background(), NoTokens{}, Call{Endpoint: ProductList}, nil)
			if KindOf(err) != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, KindOf(err))
			}
			if MessageOf(err) != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, MessageOf(err))
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) || apiErr.Status != tt.status {
				t.Errorf("Expected status %d on error, got %v", tt.status, err)
			}
		})
	}
}

func TestClient_Do_TransportFailureIsNetworkTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, "", &http.Client{Timeout: 20 * time.Millisecond}, logger.Discard())
	err := client.Do(context.Background(), NoTokens{}, Call{Endpoint: ProductList}, nil)
	if KindOf(err) != KindNetworkTimeout {
		t.Errorf("Expected network_timeout, got %v", err)
	}

	wrapped := fmt.Errorf("failed to load products: %w", err)
	if KindOf(wrapped) != KindNetworkTimeout {
		t.Errorf("Expected kind to survive wrapping, got %s", KindOf(wrapped))
	}
}

func TestClient_Do_SendsJSONAndIdempotencyKey(t *testing.T) {
	client, fake := setupClientTest(t, http.StatusCreated, `{"data":{"id":99}}`)

	err := client.Do(context.Background(), staticTokens{customer: "c"}, Call{
		Endpoint:       OrderCreate,
		Body:           map[string]any{"user_id": 3},
		IdempotencyKey: "key-1",
	}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	call := fake.calls()[0]
	if call.Method != http.MethodPost {
		t.Errorf("Expected POST, got %s", call.Method)
	}
	if got := call.Header.Get("Idempotency-Key"); got != "key-1" {
		t.Errorf("Expected idempotency key, got %q", got)
	}
	if got := call.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected JSON content type, got %q", got)
	}
	var sent map[string]int
	if err := json.Unmarshal([]byte(call.Body), &sent); err != nil || sent["user_id"] != 3 {
		t.Errorf("Expected user_id 3 in body, got %s", call.Body)
	}
}

func TestClient_Do_Multipart(t *testing.T) {
	client, fake := setupClientTest(t, http.StatusOK, `{}`)

	err := client.Do(context.Background(), staticTokens{staff: "s"}, Call{
		Endpoint: ProductCreate,
		Form: &Form{
			Fields:    map[string]string{"name": "Baguette"},
			FileField: "image",
			FileName:  "baguette.jpg",
			File:      []byte("jpeg-bytes"),
		},
	}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	call := fake.calls()[0]
	if !strings.HasPrefix(call.Header.Get("Content-Type"), "multipart/form-data") {
		t.Errorf("Expected multipart content type, got %s", call.Header.Get("Content-Type"))
	}
	if !strings.Contains(call.Body, "Baguette") || !strings.Contains(call.Body, "baguette.jpg") {
		t.Errorf("Expected form field and file in body, got %s", call.Body)
	}
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("/payments/midtrans/status/{orderId}", []string{"ORD 1"})
	if err != nil || got != "/payments/midtrans/status/ORD%201" {
		t.Errorf("Expected escaped path, got %q (%v)", got, err)
	}

	if _, err := expandPath("/orders/{id}", nil); err == nil {
		t.Error("Expected error for missing path argument")
	}
	if _, err := expandPath("/orders", []string{"1"}); err == nil {
		t.Error("Expected error for extra path argument")
	}
}

package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/api/apitest"
	"github.com/your-org/bakery-storefront/internal/pkg/logger"
)

func sampleProducts() []Product {
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return []Product{
		{ID: 1, Name: "Croissant", Description: "Butter pastry", CategoryID: 1, Price: decimal.NewFromInt(15000), Stock: 10, CreatedAt: base},
		{ID: 2, Name: "Baguette", Description: "French bread", CategoryID: 2, Price: decimal.NewFromInt(20000), Discount: decimal.NewFromInt(50), Stock: 0, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "Brownie", Description: "Chocolate butter cake", CategoryID: 1, Price: decimal.NewFromInt(12000), Stock: 3, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestProduct_EffectivePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(15000), Discount: decimal.NewFromInt(10)}
	if got := p.EffectivePrice(); !got.Equal(decimal.NewFromInt(13500)) {
		t.Errorf("Expected 13500, got %s", got)
	}

	p = Product{Price: decimal.NewFromInt(9999), Discount: decimal.NewFromFloat(33.3)}
	if got := p.EffectivePrice(); !got.Equal(decimal.NewFromInt(6669)) {
		t.Errorf("Expected rounding to whole Rupiah (6669), got %s", got)
	}

	p = Product{Price: decimal.NewFromInt(10000)}
	if got := p.EffectivePrice(); !got.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected undiscounted price, got %s", got)
	}
}

func TestBrowse_SearchIsCaseInsensitive(t *testing.T) {
	page := Browse(sampleProducts(), Query{Search: "BUTTER"})
	if page.Pagination.Total != 2 {
		t.Errorf("Expected 2 matches, got %d", page.Pagination.Total)
	}
}

func TestBrowse_Filters(t *testing.T) {
	page := Browse(sampleProducts(), Query{CategoryID: 1, InStock: true})
	if page.Pagination.Total != 2 {
		t.Errorf("Expected 2 in-stock products in category 1, got %d", page.Pagination.Total)
	}

	page = Browse(sampleProducts(), Query{
		MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(10000)),
		MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(12000)),
	})
	// Baguette discounted to 10000 and Brownie at 12000
	if page.Pagination.Total != 2 {
		t.Errorf("Expected 2 products in price range, got %d", page.Pagination.Total)
	}
}

func TestBrowse_Sorting(t *testing.T) {
	page := Browse(sampleProducts(), Query{})
	if page.Products[0].ID != 3 {
		t.Errorf("Expected newest first, got %d", page.Products[0].ID)
	}

	page = Browse(sampleProducts(), Query{Sort: SortName})
	if page.Products[0].Name != "Baguette" {
		t.Errorf("Expected Baguette first, got %s", page.Products[0].Name)
	}

	page = Browse(sampleProducts(), Query{Sort: SortPriceAsc})
	if page.Products[0].ID != 2 {
		t.Errorf("Expected discounted Baguette cheapest, got %d", page.Products[0].ID)
	}

	page = Browse(sampleProducts(), Query{Sort: SortPriceDesc})
	if page.Products[0].ID != 1 {
		t.Errorf("Expected Croissant most expensive, got %d", page.Products[0].ID)
	}
}

func TestBrowse_Pagination(t *testing.T) {
	page := Browse(sampleProducts(), Query{Page: 2, PerPage: 2})
	if len(page.Products) != 1 {
		t.Errorf("Expected 1 product on page 2, got %d", len(page.Products))
	}
	if page.Pagination.TotalPages != 2 || page.Pagination.HasNext || !page.Pagination.HasPrev {
		t.Errorf("Unexpected pagination %+v", page.Pagination)
	}

	page = Browse(sampleProducts(), Query{Page: 9, PerPage: 2})
	if len(page.Products) != 0 {
		t.Errorf("Expected empty page past the end, got %d", len(page.Products))
	}
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]interface{}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *[]Product:
		*d = v.([]Product)
	case *[]Category:
		*d = v.([]Category)
	}
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestService_Products_UsesCacheUntilMutation(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodGet, "/product", http.StatusOK, map[string]any{"data": sampleProducts()})
	srv.Handle(http.MethodDelete, "/product/1", http.StatusOK, map[string]string{"message": "deleted"})

	svc := NewService(srv.Client(), &memoryCache{data: map[string]interface{}{}}, logger.Discard())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		products, err := svc.Products(ctx, apitest.Customer())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(products) != 3 {
			t.Errorf("Expected 3 products, got %d", len(products))
		}
	}
	if n := len(srv.CallsTo(http.MethodGet, "/product")); n != 1 {
		t.Errorf("Expected 1 list call with cache, got %d", n)
	}

	if err := svc.DeleteProduct(ctx, apitest.Staff(), 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	svc.Products(ctx, apitest.Customer())
	if n := len(srv.CallsTo(http.MethodGet, "/product")); n != 2 {
		t.Errorf("Expected cache invalidated by delete, got %d list calls", n)
	}
}

func TestService_CreateProduct_ValidatesBeforeCall(t *testing.T) {
	srv := apitest.NewServer(t)
	svc := NewService(srv.Client(), nil, logger.Discard())

	tests := []struct {
		in  ProductInput
		err error
	}{
		{ProductInput{Name: " "}, ErrNameRequired},
		{ProductInput{Name: "Cake", Price: decimal.NewFromInt(-1)}, ErrInvalidPrice},
		{ProductInput{Name: "Cake", Discount: decimal.NewFromInt(101)}, ErrInvalidDiscount},
		{ProductInput{Name: "Cake", Stock: -1}, ErrInvalidStock},
	}
	for _, tt := range tests {
		_, err := svc.CreateProduct(context.Background(), apitest.Staff(), tt.in)
		if !errors.Is(err, tt.err) {
			t.Errorf("Expected %v, got %v", tt.err, err)
		}
		if api.KindOf(err) != api.KindValidation {
			t.Errorf("Expected validation kind, got %s", api.KindOf(err))
		}
	}
	if n := len(srv.Calls()); n != 0 {
		t.Errorf("Expected 0 calls, got %d", n)
	}
}

func TestService_CreateProduct_SendsMultipart(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodPost, "/product", http.StatusCreated, map[string]any{
		"data": map[string]any{"id": 4, "name": "Donut", "price": 8000},
	})
	svc := NewService(srv.Client(), nil, logger.Discard())

	product, err := svc.CreateProduct(context.Background(), apitest.Staff(), ProductInput{
		Name:      "Donut",
		Price:     decimal.NewFromInt(8000),
		Stock:     5,
		Image:     []byte("png"),
		ImageName: "donut.png",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if product.ID != 4 || !product.Price.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("Unexpected product %+v", product)
	}

	call := srv.CallsTo(http.MethodPost, "/product")[0]
	if !strings.HasPrefix(call.Header.Get("Content-Type"), "multipart/form-data") {
		t.Errorf("Expected multipart upload, got %s", call.Header.Get("Content-Type"))
	}
	if call.Header.Get("Authorization") != "Bearer staff-token" {
		t.Errorf("Expected staff bearer, got %s", call.Header.Get("Authorization"))
	}
}

func TestService_CreateProduct_RequiresStaff(t *testing.T) {
	srv := apitest.NewServer(t)
	svc := NewService(srv.Client(), nil, logger.Discard())

	_, err := svc.CreateProduct(context.Background(), apitest.Customer(), ProductInput{Name: "Cake"})
	if api.KindOf(err) != api.KindUnauthorized {
		t.Errorf("Expected unauthorized, got %v", err)
	}
	if n := len(srv.Calls()); n != 0 {
		t.Errorf("Expected 0 calls, got %d", n)
	}
}

func TestService_SetStock(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.Handle(http.MethodPut, "/product/2", http.StatusOK, map[string]any{})
	svc := NewService(srv.Client(), nil, logger.Discard())

	if err := svc.SetStock(context.Background(), apitest.Customer(), 2, 7); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var body map[string]int
	srv.CallsTo(http.MethodPut, "/product/2")[0].Decode(&body)
	if body["stock"] != 7 {
		t.Errorf("Expected stock 7, got %v", body)
	}
}

// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
)

// Validation failures raised before any API call
var (
	ErrNameRequired    = api.Validation("Name is required")
	ErrInvalidPrice    = api.Validation("Price must not be negative")
	ErrInvalidDiscount = api.Validation("Discount must be between 0 and 100")
	ErrInvalidStock    = api.Validation("Stock must not be negative")
)

// Service reads and administers the catalog through the API
type Service struct {
	client *api.Client
	cache  Cache
	logger *logrus.Logger
}

// NewService creates a new catalog service. cache may be nil.
func NewService(client *api.Client, cache Cache, logger *logrus.Logger) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

// ProductInput is the admin form for creating or editing a product
type ProductInput struct {
	Name        string
	Description string
	CategoryID  int64
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	Image       []byte
	ImageName   string
}

// Validate checks the product form
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if in.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	if in.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

func (in ProductInput) form() *api.Form {
	f := &api.Form{
		Fields: map[string]string{
			"name":        strings.TrimSpace(in.Name),
			"description": in.Description,
			"price":       in.Price.String(),
			"discount":    in.Discount.String(),
			"stock":       strconv.Itoa(in.Stock),
		},
	}
	if in.CategoryID > 0 {
		f.Fields["category_id"] = strconv.FormatInt(in.CategoryID, 10)
	}
	if len(in.Image) > 0 {
		f.FileField = "image"
		f.FileName = in.ImageName
		if f.FileName == "" {
			f.FileName = "image"
		}
		f.File = in.Image
	}
	return f
}

// CategoryInput is the admin form for a category
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Products returns the full product list
func (s *Service) Products(ctx context.Context, tokens api.TokenSource) ([]Product, error) {
	var products []Product
	if ok, err := s.cache.Get(ctx, productsCacheKey, &products); err != nil {
		s.logger.WithError(err).Warn("Catalog cache read failed")
	} else if ok {
		return products, nil
	}

	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.ProductList}, &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	if err := s.cache.Set(ctx, productsCacheKey, products); err != nil {
		s.logger.WithError(err).Warn("Catalog cache write failed")
	}
	return products, nil
}

// Product returns a single product, always fresh from the API
func (s *Service) Product(ctx context.Context, tokens api.TokenSource, id int64) (*Product, error) {
	var product Product
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ProductGet,
		PathArgs: []string{strconv.FormatInt(id, 10)},
	}, &product)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &product, nil
}

// Browse fetches the product list and applies q over it
func (s *Service) Browse(ctx context.Context, tokens api.TokenSource, q Query) (*Page, error) {
	products, err := s.Products(ctx, tokens)
	if err != nil {
		return nil, err
	}
	page := Browse(products, q)
	return &page, nil
}

// Categories returns the category list
func (s *Service) Categories(ctx context.Context, tokens api.TokenSource) ([]Category, error) {
	var categories []Category
	if ok, err := s.cache.Get(ctx, categoriesCacheKey, &categories); err != nil {
		s.logger.WithError(err).Warn("Catalog cache read failed")
	} else if ok {
		return categories, nil
	}

	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.CategoryList}, &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	if err := s.cache.Set(ctx, categoriesCacheKey, categories); err != nil {
		s.logger.WithError(err).Warn("Catalog cache write failed")
	}
	return categories, nil
}

// CreateProduct creates a product (staff only)
func (s *Service) CreateProduct(ctx context.Context, tokens api.TokenSource, in ProductInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var product Product
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.ProductCreate, Form: in.form()}, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx, productsCacheKey)
	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created")
	return &product, nil
}

// UpdateProduct edits a product (staff only)
func (s *Service) UpdateProduct(ctx context.Context, tokens api.TokenSource, id int64, in ProductInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var product Product
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ProductUpdate,
		PathArgs: []string{strconv.FormatInt(id, 10)},
		Form:     in.form(),
	}, &product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	s.invalidate(ctx, productsCacheKey)
	return &product, nil
}

// DeleteProduct removes a product (staff only)
func (s *Service) DeleteProduct(ctx context.Context, tokens api.TokenSource, id int64) error {
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ProductDelete,
		PathArgs: []string{strconv.FormatInt(id, 10)},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.invalidate(ctx, productsCacheKey)
	s.logger.WithField("product_id", id).Info("Product deleted")
	return nil
}

// SetStock writes an absolute stock level for a product
func (s *Service) SetStock(ctx context.Context, tokens api.TokenSource, productID int64, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ProductStock,
		PathArgs: []string{strconv.FormatInt(productID, 10)},
		Body:     map[string]int{"stock": stock},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to update stock of product %d: %w", productID, err)
	}

	s.invalidate(ctx, productsCacheKey)
	return nil
}

// CreateCategory creates a category (staff only)
func (s *Service) CreateCategory(ctx context.Context, tokens api.TokenSource, in CategoryInput) (*Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}

	var category Category
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.CategoryCreate, Body: in}, &category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidate(ctx, categoriesCacheKey)
	return &category, nil
}

// UpdateCategory edits a category (staff only)
func (s *Service) UpdateCategory(ctx context.Context, tokens api.TokenSource, id int64, in CategoryInput) (*Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrNameRequired
	}

	var category Category
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.CategoryUpdate,
		PathArgs: []string{strconv.FormatInt(id, 10)},
		Body:     in,
	}, &category)
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}

	s.invalidate(ctx, categoriesCacheKey)
	return &category, nil
}

// DeleteCategory removes a category (staff only)
func (s *Service) DeleteCategory(ctx context.Context, tokens api.TokenSource, id int64) error {
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.CategoryDelete,
		PathArgs: []string{strconv.FormatInt(id, 10)},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}

	// Products embed their category
	s.invalidate(ctx, categoriesCacheKey, productsCacheKey)
	return nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.WithError(err).Warn("Catalog cache invalidation failed")
	}
}

// internal/interfaces/http/handlers/product.go
package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/your-org/bakery-storefront/internal/domain/catalog"
)

// maxImageSize caps uploaded product images
const maxImageSize = 5 << 20

// ProductHandler handles product endpoints
type ProductHandler struct {
	catalog *catalog.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *catalog.Service) *ProductHandler {
	return &ProductHandler{catalog: catalogService}
}

// StockRequest sets an absolute stock level
type StockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// GetProducts handles GET /products with search, filters, sort and pagination
func (h *ProductHandler) GetProducts(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	q := catalog.Query{
		Search: c.Query("search"),
		Sort:   c.DefaultQuery("sort", catalog.SortNewest),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "12"))
	q.InStock, _ = strconv.ParseBool(c.Query("in_stock"))

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		q.CategoryID = id
	}

	var err error
	if q.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		respondBadRequest(c, err)
		return
	}
	if q.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		respondBadRequest(c, err)
		return
	}

	page, err := h.catalog.Browse(c.Request.Context(), d.Session, q)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Products retrieved successfully", page)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalog.Product(c.Request.Context(), d.Session, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Product retrieved successfully", gin.H{
		"product":         product,
		"effective_price": product.EffectivePrice(),
		"in_stock":        product.InStock(),
	})
}

// AdminCreateProduct handles POST /admin/products (multipart)
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	in, err := bindProductInput(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), d.Session, in)
	if err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Product created")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    product,
	})
}

// AdminUpdateProduct handles PUT /admin/products/:id (multipart)
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	in, err := bindProductInput(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), d.Session, id, in)
	if err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Product updated")
	respondOK(c, "Product updated successfully", product)
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(c.Request.Context(), d.Session, id); err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Product deleted")
	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// AdminUpdateStock handles PUT /admin/products/:id/stock
func (h *ProductHandler) AdminUpdateStock(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.catalog.SetStock(c.Request.Context(), d.Session, id, *req.Stock); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Stock updated successfully", gin.H{
		"product_id": id,
		"stock":      *req.Stock,
	})
}

func bindProductInput(c *gin.Context) (catalog.ProductInput, error) {
	in := catalog.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       decimal.Zero,
		Discount:    decimal.Zero,
	}

	var err error
	if raw := c.PostForm("category_id"); raw != "" {
		if in.CategoryID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return in, err
		}
	}
	if raw := c.PostForm("price"); raw != "" {
		if in.Price, err = decimal.NewFromString(raw); err != nil {
			return in, err
		}
	}
	if raw := c.PostForm("discount"); raw != "" {
		if in.Discount, err = decimal.NewFromString(raw); err != nil {
			return in, err
		}
	}
	if raw := c.PostForm("stock"); raw != "" {
		if in.Stock, err = strconv.Atoi(raw); err != nil {
			return in, err
		}
	}

	header, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return in, nil
	}
	if err != nil {
		return in, err
	}
	file, err := header.Open()
	if err != nil {
		return in, err
	}
	defer file.Close()

	in.Image, err = io.ReadAll(io.LimitReader(file, maxImageSize))
	in.ImageName = header.Filename
	return in, err
}

func queryDecimal(c *gin.Context, key string) (decimal.NullDecimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(v), nil
}

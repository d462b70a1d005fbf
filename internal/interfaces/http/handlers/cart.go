// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/cart"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	catalog *catalog.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(catalogService *catalog.Service) *CartHandler {
	return &CartHandler{catalog: catalogService}
}

// AddToCartRequest represents the request to add an item to cart
type AddToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Qty       int   `json:"qty" binding:"required"`
}

// UpdateCartItemRequest represents the request to update a cart line
type UpdateCartItemRequest struct {
	Qty int `json:"qty"`
}

// CartResponse represents the cart with totals
type CartResponse struct {
	Items  []cart.Item `json:"items"`
	Totals cart.Totals `json:"totals"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	crt, ok := h.cart(c)
	if !ok {
		return
	}

	items, err := crt.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Cart retrieved successfully", cartResponse(items))
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	crt, ok := h.cart(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := ensureCartLoaded(c, crt); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.catalog.Product(ctx, d.Session, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := crt.Add(ctx, *product, req.Qty)
	if err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	d.Feed.Success(product.Name + " added to cart")
	respondOK(c, "Item added to cart successfully", cartResponse(items))
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	crt, ok := h.cart(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if _, found := crt.Find(id); !found {
		if err := ensureCartLoaded(c, crt); err != nil {
			respondError(c, err)
			return
		}
	}

	items, err := crt.UpdateQuantity(c.Request.Context(), id, req.Qty)
	if err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	respondOK(c, "Cart item updated successfully", cartResponse(items))
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	crt, ok := h.cart(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	items, err := crt.Remove(c.Request.Context(), id)
	if err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	d.Feed.Success("Item removed from cart")
	respondOK(c, "Item removed from cart successfully", cartResponse(items))
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	crt, ok := h.cart(c)
	if !ok {
		return
	}

	if err := crt.Clear(c.Request.Context()); err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

func (h *CartHandler) cart(c *gin.Context) (*cart.Cart, bool) {
	d, ok := currentDevice(c)
	if !ok {
		return nil, false
	}
	crt, err := d.Cart()
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return crt, true
}

// ensureCartLoaded fetches the cart once so local checks see the server lines
func ensureCartLoaded(c *gin.Context, crt *cart.Cart) error {
	if len(crt.Items()) > 0 {
		return nil
	}
	_, err := crt.Load(c.Request.Context())
	return err
}

func cartResponse(items []cart.Item) CartResponse {
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{
		Items:  items,
		Totals: cart.CalculateTotals(items),
	}
}

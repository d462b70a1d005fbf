// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
	"github.com/your-org/bakery-storefront/internal/domain/checkout"
	"github.com/your-org/bakery-storefront/internal/domain/journal"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/device"
)

// CheckoutHandler handles order submission endpoints
type CheckoutHandler struct {
	checkout *checkout.Service
	catalog  *catalog.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, catalogService *catalog.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutService,
		catalog:  catalogService,
	}
}

// SelectionRequest is one product and quantity chosen outside the cart
type SelectionRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Qty       int   `json:"qty"`
}

// PlaceForCustomerRequest is the staff order form
type PlaceForCustomerRequest struct {
	CustomerID int64              `json:"customer_id"`
	Items      []SelectionRequest `json:"items"`
}

// Checkout handles POST /checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	crt, err := d.Cart()
	if err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	if err := ensureCartLoaded(c, crt); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.checkout.CheckoutCart(c.Request.Context(), checkoutRequest(d), d.CustomerID(), crt.Items())
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	if result.ClearCart {
		crt.Forget()
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

// BuyNow handles POST /checkout/buy-now
func (h *CheckoutHandler) BuyNow(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	product, err := h.catalog.Product(ctx, d.Session, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	sel := checkout.Selection{Product: *product, Qty: req.Qty}
	result, err := h.checkout.BuyNow(ctx, checkoutRequest(d), d.CustomerID(), sel)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

// AdminPlaceOrder handles POST /admin/orders
func (h *CheckoutHandler) AdminPlaceOrder(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	var req PlaceForCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	selections := make([]checkout.Selection, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := h.catalog.Product(ctx, d.Session, item.ProductID)
		if err != nil {
			respondError(c, err)
			return
		}
		selections = append(selections, checkout.Selection{Product: *product, Qty: item.Qty})
	}

	result, err := h.checkout.PlaceForCustomer(ctx, checkoutRequest(d), req.CustomerID, selections)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

// AdminRuns handles GET /admin/checkout-runs?status=partial
func (h *CheckoutHandler) AdminRuns(c *gin.Context) {
	status := journal.Status(c.DefaultQuery("status", string(journal.StatusPartial)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := h.checkout.Runs(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Checkout runs retrieved successfully", runs)
}

func checkoutRequest(d *device.Device) checkout.Request {
	return checkout.Request{
		Device:   d.ID,
		Tokens:   d.Session,
		Notifier: d.Feed,
	}
}

// respondCheckoutError adds the reached steps when the order exists but the
// follow-up calls did not all complete
func respondCheckoutError(c *gin.Context, err error) {
	var partial *checkout.PartialError
	if !errors.As(err, &partial) {
		respondError(c, err)
		return
	}

	_ = c.Error(err)
	c.JSON(statusFor(api.KindOf(err)), gin.H{
		"error":       "Something went wrong while placing your order",
		"kind":        api.KindOf(err),
		"order_id":    partial.OrderID,
		"completed":   partial.Completed,
		"failed_step": partial.Failed,
		"compensated": partial.Compensated,
	})
}

// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/domain/review"
	"github.com/your-org/bakery-storefront/internal/interfaces/http/device"
	"github.com/your-org/bakery-storefront/internal/pkg/pdf"
)

// OrderHandler handles order history endpoints
type OrderHandler struct {
	orders  *order.Service
	reviews *review.Service
	pdf     *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, reviews *review.Service, pdfService *pdf.Service) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		reviews: reviews,
		pdf:     pdfService,
	}
}

// CancelOrderRequest carries the user's confirmation
type CancelOrderRequest struct {
	Confirmed bool `json:"confirmed"`
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	h.list(c, order.ScopeOwn)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), d.Session, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order retrieved successfully", o)
}

// GetReviewable handles GET /orders/reviewable. It lists products of paid
// orders the customer has not reviewed yet.
func (h *OrderHandler) GetReviewable(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	set, err := d.Reviewed(ctx, h.reviews)
	if err != nil {
		respondError(c, err)
		return
	}

	history := d.History(order.ScopeOwn)
	if _, err := history.Load(ctx); err != nil {
		respondError(c, err)
		return
	}

	items := history.ReviewableItems(set.Has)
	if items == nil {
		items = []order.OrderItem{}
	}
	respondOK(c, "Reviewable items retrieved successfully", items)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	history, err := loadedHistory(c, d, order.ScopeOwn, id)
	if err != nil {
		respondError(c, err)
		return
	}

	o, err := history.Cancel(c.Request.Context(), id, req.Confirmed)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order cancelled successfully", o)
}

// DownloadReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) DownloadReceipt(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), d.Session, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "html" {
		html, err := h.pdf.RenderHTML(o)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	buf, err := h.pdf.Receipt(o)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=receipt-"+c.Param("id")+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// AdminGetOrders handles GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	h.list(c, order.ScopeAll)
}

// AdminAdvanceOrder handles PATCH /admin/orders/:id/advance
func (h *OrderHandler) AdminAdvanceOrder(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	history, err := loadedHistory(c, d, order.ScopeAll, id)
	if err != nil {
		respondError(c, err)
		return
	}

	o, err := history.Advance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Order status updated successfully", o)
}

// AdminUpdateOrder handles PUT /admin/orders/:id
func (h *OrderHandler) AdminUpdateOrder(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req order.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	o, err := h.orders.Update(c.Request.Context(), d.Session, id, req)
	if err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	d.Feed.Success("Order updated")
	respondOK(c, "Order updated successfully", o)
}

func (h *OrderHandler) list(c *gin.Context, scope order.Scope) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	orders, err := d.History(scope).Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	respondOK(c, "Orders retrieved successfully", orders)
}

// loadedHistory returns the history of scope, loading it when id is not in
// the local list yet
func loadedHistory(c *gin.Context, d *device.Device, scope order.Scope, id int64) (*order.History, error) {
	history := d.History(scope)
	if _, found := history.Find(id); found {
		return history, nil
	}
	if _, err := history.Load(c.Request.Context()); err != nil {
		return nil, err
	}
	return history, nil
}

// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/domain/payment"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments *payment.Service
	orders   *order.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *payment.Service, orders *order.Service) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		orders:   orders,
	}
}

// PayRequest selects how an order is paid
type PayRequest struct {
	PaymentMethod payment.Method `json:"payment_method"`
}

// CallbackRequest is a widget callback relayed by the browser
type CallbackRequest struct {
	Event payment.Event `json:"event" binding:"required"`
}

// PayOrder handles POST /orders/:id/pay
func (h *PaymentHandler) PayOrder(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	o, err := h.orders.Get(ctx, d.Session, id)
	if err != nil {
		respondError(c, err)
		return
	}

	checkout, err := h.payments.Pay(ctx, payment.Request{
		Device:   d.ID,
		Tokens:   d.Session,
		Notifier: d.Feed,
		Orders:   d.History(order.ScopeOwn),
	}, *o, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Payment started successfully", checkout)
}

// Callback handles POST /payments/gateway/:orderId/callback
func (h *PaymentHandler) Callback(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}

	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.payments.Callback(c.Request.Context(), d.ID, orderID, req.Event); err != nil {
		respondError(c, err)
		return
	}

	_, open := h.payments.Sessions().Get(d.ID, orderID)
	respondOK(c, "Callback processed", gin.H{
		"order_id": orderID,
		"event":    req.Event,
		"open":     open,
	})
}

// Abandon handles DELETE /payments/gateway/:orderId
func (h *PaymentHandler) Abandon(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}

	if !h.payments.Abandon(d.ID, orderID) {
		respondError(c, payment.ErrNoSession)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment abandoned",
	})
}

// GatewayStatus handles GET /payments/gateway/:orderId/status
func (h *PaymentHandler) GatewayStatus(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}

	status, err := h.payments.Status(c.Request.Context(), d.Session, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Payment status retrieved successfully", gin.H{
		"status": status,
		"paid":   status.Paid(),
	})
}

// AdminCashPaid handles POST /admin/orders/:id/cash-paid
func (h *PaymentHandler) AdminCashPaid(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	o, err := h.orders.Get(ctx, d.Session, id)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.payments.RecordCashPaid(ctx, payment.Request{
		Device:   d.ID,
		Tokens:   d.Session,
		Notifier: d.Feed,
		Orders:   d.History(order.ScopeAll),
	}, *o)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cash payment confirmed",
		"data": gin.H{
			"order_id": id,
			"status":   order.OrderStatusProcessing,
		},
	})
}

// AdminGetPayments handles GET /admin/payments
func (h *PaymentHandler) AdminGetPayments(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	payments, err := h.payments.List(c.Request.Context(), d.Session)
	if err != nil {
		respondError(c, err)
		return
	}
	if payments == nil {
		payments = []payment.Payment{}
	}

	respondOK(c, "Payments retrieved successfully", payments)
}

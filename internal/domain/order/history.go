// internal/domain/order/history.go
package order

import (
	"context"
	"sync"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/pkg/notify"
)

// Scope selects which orders a History lists
type Scope int

const (
	// ScopeOwn lists the signed-in customer's orders
	ScopeOwn Scope = iota
	// ScopeAll lists every order (staff)
	ScopeAll
)

// History is the order-history view-state. Mutations update the local list
// optimistically on success instead of re-fetching.
type History struct {
	service  *Service
	tokens   api.TokenSource
	scope    Scope
	notifier notify.Notifier

	mu     sync.RWMutex
	orders []Order
}

// NewHistory creates a new order history view
func NewHistory(service *Service, tokens api.TokenSource, scope Scope, notifier notify.Notifier) *History {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &History{
		service:  service,
		tokens:   tokens,
		scope:    scope,
		notifier: notifier,
	}
}

// Load replaces the local list with the API's
func (h *History) Load(ctx context.Context) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	if h.scope == ScopeAll {
		orders, err = h.service.ListAll(ctx, h.tokens)
	} else {
		orders, err = h.service.List(ctx, h.tokens)
	}
	if err != nil {
		h.notifier.Error(api.MessageOf(err))
		return nil, err
	}

	h.mu.Lock()
	h.orders = orders
	h.mu.Unlock()
	return h.Orders(), nil
}

// Orders returns a snapshot of the local list
func (h *History) Orders() []Order {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Order(nil), h.orders...)
}

// Find returns the local copy of an order
func (h *History) Find(id int64) (Order, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, o := range h.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Cancel cancels an order after the user confirmed. Paid or finished orders
// are rejected before any call.
func (h *History) Cancel(ctx context.Context, id int64, confirmed bool) (*Order, error) {
	o, ok := h.Find(id)
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !o.CanCancel() {
		return nil, ErrCancelNotAllowed
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	if err := h.service.Cancel(ctx, h.tokens, id); err != nil {
		h.notifier.Error(api.MessageOf(err))
		return nil, err
	}

	updated := h.setStatus(id, OrderStatusCancelled)
	h.notifier.Success("Order cancelled")
	return updated, nil
}

// Advance moves an order exactly one step forward (staff). The local list is
// updated on success; a failure leaves it untouched.
func (h *History) Advance(ctx context.Context, id int64) (*Order, error) {
	o, ok := h.Find(id)
	if !ok {
		return nil, ErrOrderNotFound
	}
	next, ok := Next(o.Status)
	if !ok {
		return nil, ErrNoNextStatus
	}

	if err := h.service.SetStatus(ctx, h.tokens, id, next); err != nil {
		h.notifier.Error(api.MessageOf(err))
		return nil, err
	}

	updated := h.setStatus(id, next)
	h.notifier.Success("Order status updated to " + string(next))
	return updated, nil
}

// MarkProcessing advances a paid order to processing and mirrors it locally
func (h *History) MarkProcessing(ctx context.Context, id int64) error {
	if err := h.service.MarkProcessing(ctx, h.tokens, id); err != nil {
		return err
	}
	h.mu.Lock()
	for i := range h.orders {
		if h.orders[i].ID == id {
			h.orders[i].Status = OrderStatusProcessing
			h.orders[i].PaymentStatus = PaymentStatusPaid
		}
	}
	h.mu.Unlock()
	return nil
}

// ReviewableItems returns items of paid orders whose product the user has not
// reviewed yet. Each product appears once.
func (h *History) ReviewableItems(reviewed func(productID int64) bool) []OrderItem {
	return ReviewableItems(h.Orders(), reviewed)
}

// Purchased reports whether productID is on a paid order of the list
func (h *History) Purchased(productID int64) bool {
	for _, item := range ReviewableItems(h.Orders(), nil) {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ReviewableItems returns items of paid orders not yet reviewed
func ReviewableItems(orders []Order, reviewed func(productID int64) bool) []OrderItem {
	seen := make(map[int64]bool)
	var out []OrderItem
	for _, o := range orders {
		if !o.IsPaid() {
			continue
		}
		for _, item := range o.Items {
			if seen[item.ProductID] || (reviewed != nil && reviewed(item.ProductID)) {
				continue
			}
			seen[item.ProductID] = true
			out = append(out, item)
		}
	}
	return out
}

func (h *History) setStatus(id int64, status OrderStatus) *Order {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.orders {
		if h.orders[i].ID == id {
			h.orders[i].Status = status
			o := h.orders[i]
			return &o
		}
	}
	return nil
}

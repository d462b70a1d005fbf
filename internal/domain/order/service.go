// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
)

// Validation failures raised before any API call
var (
	ErrCancelNotAllowed     = api.Validation("This order can no longer be cancelled")
	ErrConfirmationRequired = api.Validation("Please confirm the cancellation")
	ErrNoNextStatus         = api.Validation("This order has no further status")
	ErrInvalidTransition    = api.Validation("Invalid order status transition")
	ErrOrderNotFound        = &api.Error{Kind: api.KindNotFound, Message: "Order not found"}
)

// Service wraps the order endpoints of the API
type Service struct {
	client *api.Client
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(client *api.Client, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// List returns the orders of the signed-in customer
func (s *Service) List(ctx context.Context, tokens api.TokenSource) ([]Order, error) {
	var orders []Order
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.OrderList}, &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// ListAll returns every order (staff only)
func (s *Service) ListAll(ctx context.Context, tokens api.TokenSource) ([]Order, error) {
	var orders []Order
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.OrderAll}, &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch all orders: %w", err)
	}
	return orders, nil
}

// Get returns a single order
func (s *Service) Get(ctx context.Context, tokens api.TokenSource, id int64) (*Order, error) {
	var order Order
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.OrderGet,
		PathArgs: []string{strconv.FormatInt(id, 10)},
	}, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %d: %w", id, err)
	}
	return &order, nil
}

// Create submits a new order. idempotencyKey is forwarded so a re-submission
// of the same checkout can be recognised by the API.
func (s *Service) Create(ctx context.Context, tokens api.TokenSource, req CreateRequest, idempotencyKey string) (*Order, error) {
	var order Order
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint:       api.OrderCreate,
		Body:           req,
		IdempotencyKey: idempotencyKey,
	}, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"user_id":     req.UserID,
		"total_price": req.TotalPrice.String(),
		"items":       len(req.OrderItems),
	}).Info("Order created")
	return &order, nil
}

// Update edits an order (staff only)
func (s *Service) Update(ctx context.Context, tokens api.TokenSource, id int64, req UpdateRequest) (*Order, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, ErrInvalidTransition
	}

	var order Order
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.OrderUpdate,
		PathArgs: []string{strconv.FormatInt(id, 10)},
		Body:     req,
	}, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	return &order, nil
}

// SetStatus patches the status of an order
func (s *Service) SetStatus(ctx context.Context, tokens api.TokenSource, id int64, status OrderStatus) error {
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.OrderStatus,
		PathArgs: []string{strconv.FormatInt(id, 10)},
		Body:     map[string]OrderStatus{"status": status},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to set order %d to %s: %w", id, status, err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": id,
		"status":   status,
	}).Info("Order status updated")
	return nil
}

// MarkProcessing advances a paid order to processing
func (s *Service) MarkProcessing(ctx context.Context, tokens api.TokenSource, id int64) error {
	return s.SetStatus(ctx, tokens, id, OrderStatusProcessing)
}

// Cancel cancels an order on the API
func (s *Service) Cancel(ctx context.Context, tokens api.TokenSource, id int64) error {
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.OrderCancel,
		PathArgs: []string{strconv.FormatInt(id, 10)},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", id, err)
	}

	s.logger.WithField("order_id", id).Info("Order cancelled")
	return nil
}

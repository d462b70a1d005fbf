// internal/domain/payment/service.go
package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/pkg/notify"
	"github.com/your-org/bakery-storefront/internal/pkg/telemetry"
)

// Validation failures raised before any API call
var (
	ErrInvalidMethod = api.Validation("Please choose a payment method")
	ErrAlreadyPaid   = api.Validation("This order has already been paid")
	ErrOrderRequired = api.Validation("Please select an order to pay")
)

// User-facing messages of the payment flow
const (
	MsgCashRecorded    = "Payment recorded, please pay at the cashier"
	MsgPaymentSuccess  = "Payment successful"
	MsgStillProcessing = "Your payment is still being processed"
	MsgPaymentPending  = "Waiting for your payment"
	MsgPaymentFailed   = "Payment failed, please try again"
	MsgPaymentClosed   = "Payment was cancelled"
	MsgCashPaid        = "Cash payment confirmed"
)

// Advancer moves an order to processing once it is paid. order.History
// satisfies it and keeps its local list in step.
type Advancer interface {
	MarkProcessing(ctx context.Context, orderID int64) error
}

// Request carries the per-device context of a payment
type Request struct {
	Device   string
	Tokens   api.TokenSource
	Notifier notify.Notifier
	// Orders is optional; without it the order is advanced on the API only
	Orders Advancer
}

// Checkout is what the caller needs after choosing a method
type Checkout struct {
	Method  Method   `json:"payment_method"`
	Payment *Payment `json:"payment,omitempty"`
	Widget  *Widget  `json:"widget,omitempty"`
	Session *Session `json:"session,omitempty"`
}

// Service dispatches payments by method
type Service struct {
	client   *api.Client
	orders   *order.Service
	gateway  *Gateway
	sessions *Registry
	logger   *logrus.Logger
}

// NewService creates a new payment service
func NewService(client *api.Client, orders *order.Service, gateway *Gateway, sessions *Registry, logger *logrus.Logger) *Service {
	return &Service{
		client:   client,
		orders:   orders,
		gateway:  gateway,
		sessions: sessions,
		logger:   logger,
	}
}

// Sessions returns the registry of open gateway widgets
func (s *Service) Sessions() *Registry {
	return s.sessions
}

// Pay starts a payment of o with method
func (s *Service) Pay(ctx context.Context, req Request, o order.Order, method Method) (*Checkout, error) {
	if o.ID <= 0 {
		return nil, s.reject(req, ErrOrderRequired)
	}
	if !method.Valid() {
		return nil, s.reject(req, ErrInvalidMethod)
	}
	if o.IsPaid() {
		return nil, s.reject(req, ErrAlreadyPaid)
	}

	if method == MethodCash {
		return s.payCash(ctx, req, o)
	}
	return s.openGateway(ctx, req, o, method)
}

func (s *Service) payCash(ctx context.Context, req Request, o order.Order) (*Checkout, error) {
	body := createRequest{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Amount:        o.TotalPrice,
		PaymentMethod: MethodCash,
		Status:        StatusPending,
	}

	var payment Payment
	if err := s.client.Do(ctx, req.Tokens, api.Call{Endpoint: api.PaymentCreate, Body: body}, &payment); err != nil {
		notifier(req).Error(api.MessageOf(err))
		return nil, fmt.Errorf("failed to create cash payment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"amount":   o.TotalPrice.String(),
	}).Info("Cash payment recorded")
	notifier(req).Success(MsgCashRecorded)
	return &Checkout{Method: MethodCash, Payment: &payment}, nil
}

func (s *Service) openGateway(ctx context.Context, req Request, o order.Order, method Method) (*Checkout, error) {
	widget, err := s.gateway.Load()
	if err != nil {
		notifier(req).Error(MsgPaymentFailed)
		return nil, fmt.Errorf("failed to load payment gateway: %w", err)
	}

	var token TokenResponse
	err = s.client.Do(ctx, req.Tokens, api.Call{
		Endpoint: api.GatewayCreate,
		Body:     tokenRequest{OrderID: o.ID, Amount: o.TotalPrice, PaymentMethod: method},
	}, &token)
	if err != nil {
		notifier(req).Error(api.MessageOf(err))
		return nil, fmt.Errorf("failed to request gateway token for order %d: %w", o.ID, err)
	}

	session := s.sessions.Open(req.Device, o.ID, method, token, s.callbacks(req, o.ID))
	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"method":   method,
	}).Info("Gateway payment opened")
	return &Checkout{Method: method, Widget: &widget, Session: session}, nil
}

// callbacks builds the handler of one gateway session
func (s *Service) callbacks(req Request, orderID int64) Handler {
	log := s.logger.WithField("order_id", orderID)
	advanced := false

	return func(ctx context.Context, event Event) bool {
		telemetry.RecordPaymentCallback(string(event))
		log.WithField("event", event).Info("Gateway callback received")

		switch event {
		case EventPending:
			notifier(req).Info(MsgPaymentPending)
			return false
		case EventError:
			notifier(req).Error(MsgPaymentFailed)
			return true
		case EventClose:
			notifier(req).Info(MsgPaymentClosed)
			return true
		}

		status, err := s.Status(ctx, req.Tokens, orderID)
		if err != nil {
			log.WithError(err).Warn("Failed to verify gateway payment")
			notifier(req).Info(MsgStillProcessing)
			return false
		}
		if !status.Paid() {
			notifier(req).Info(MsgStillProcessing)
			return false
		}
		if advanced {
			return true
		}

		if err := s.advance(ctx, req, orderID); err != nil {
			log.WithError(err).Error("Failed to advance paid order")
			notifier(req).Error(api.MessageOf(err))
			return false
		}
		advanced = true
		notifier(req).Success(MsgPaymentSuccess)
		return true
	}
}

// Callback delivers a widget callback relayed by device for orderID
func (s *Service) Callback(ctx context.Context, device string, orderID int64, event Event) error {
	return s.sessions.Dispatch(ctx, device, orderID, event)
}

// Abandon forgets the open widget of orderID opened by device
func (s *Service) Abandon(device string, orderID int64) bool {
	return s.sessions.Abandon(device, orderID)
}

// Status asks the API for the gateway state of orderID
func (s *Service) Status(ctx context.Context, tokens api.TokenSource, orderID int64) (*GatewayStatus, error) {
	var status GatewayStatus
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.GatewayStatus,
		PathArgs: []string{strconv.FormatInt(orderID, 10)},
	}, &status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gateway status of order %d: %w", orderID, err)
	}
	return &status, nil
}

// RecordCashPaid confirms a cash payment at the counter (staff only) and
// advances the order to processing
func (s *Service) RecordCashPaid(ctx context.Context, req Request, o order.Order) error {
	if o.IsPaid() {
		return s.reject(req, ErrAlreadyPaid)
	}

	err := s.client.Do(ctx, req.Tokens, api.Call{
		Endpoint: api.GatewayCashPay,
		Body:     cashPaidRequest{OrderID: o.ID, Amount: o.TotalPrice},
	}, nil)
	if err != nil {
		notifier(req).Error(api.MessageOf(err))
		return fmt.Errorf("failed to record cash payment of order %d: %w", o.ID, err)
	}

	if err := s.advance(ctx, req, o.ID); err != nil {
		notifier(req).Error(api.MessageOf(err))
		return err
	}

	s.logger.WithField("order_id", o.ID).Info("Cash payment confirmed")
	notifier(req).Success(MsgCashPaid)
	return nil
}

// List returns every payment (staff only)
func (s *Service) List(ctx context.Context, tokens api.TokenSource) ([]Payment, error) {
	var payments []Payment
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.PaymentList}, &payments); err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return payments, nil
}

func (s *Service) advance(ctx context.Context, req Request, orderID int64) error {
	if req.Orders != nil {
		return req.Orders.MarkProcessing(ctx, orderID)
	}
	return s.orders.MarkProcessing(ctx, req.Tokens, orderID)
}

func (s *Service) reject(req Request, err error) error {
	notifier(req).Error(api.MessageOf(err))
	return err
}

func notifier(req Request) notify.Notifier {
	if req.Notifier == nil {
		return notify.Discard{}
	}
	return req.Notifier
}

// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/cart"
	"github.com/your-org/bakery-storefront/internal/domain/catalog"
	"github.com/your-org/bakery-storefront/internal/domain/journal"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/pkg/notify"
	"github.com/your-org/bakery-storefront/internal/pkg/telemetry"
)

// Precondition failures, raised before any API call
var (
	ErrEmptyCart        = api.Validation("Your cart is empty")
	ErrCustomerRequired = api.Validation("Please select a customer")
	ErrNotSignedIn      = &api.Error{Kind: api.KindUnauthorized, Message: "Please sign in to place an order"}
)

const (
	msgOrderPlaced    = "Order placed successfully"
	msgCheckoutFailed = "Something went wrong while placing your order"
)

// Request carries the per-device context of a checkout run
type Request struct {
	Device   string
	Tokens   api.TokenSource
	Notifier notify.Notifier
}

// Result is the outcome of a successful checkout
type Result struct {
	RunID uuid.UUID    `json:"run_id"`
	Order *order.Order `json:"order"`
	// ClearCart tells the caller to drop its local cart items
	ClearCart bool `json:"clear_cart"`
	// ReloadHint asks the view to refresh everything it shows
	ReloadHint bool `json:"reload_hint"`
}

// Service runs the order submission pipeline
type Service struct {
	orders     *order.Service
	catalog    *catalog.Service
	lines      *cart.Lines
	journal    journal.Journal
	compensate bool
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a new checkout service. A nil journal disables run records.
func NewService(orders *order.Service, catalogService *catalog.Service, lines *cart.Lines, j journal.Journal, compensate bool, logger *logrus.Logger) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	return &Service{
		orders:     orders,
		catalog:    catalogService,
		lines:      lines,
		journal:    j,
		compensate: compensate,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckoutCart places an order for every item of a customer's cart and
// removes the cart lines afterwards
func (s *Service) CheckoutCart(ctx context.Context, req Request, customerID int64, items []cart.Item) (*Result, error) {
	if customerID <= 0 {
		return nil, s.reject(req, ErrNotSignedIn)
	}
	return s.run(ctx, req, SourceCart, customerID, LinesFromCart(items))
}

// BuyNow places an order for a single product without touching the cart
func (s *Service) BuyNow(ctx context.Context, req Request, customerID int64, sel Selection) (*Result, error) {
	if customerID <= 0 {
		return nil, s.reject(req, ErrNotSignedIn)
	}
	return s.run(ctx, req, SourceBuyNow, customerID, LinesFromSelections([]Selection{sel}))
}

// PlaceForCustomer places an order on behalf of a customer chosen by staff
func (s *Service) PlaceForCustomer(ctx context.Context, req Request, customerID int64, selections []Selection) (*Result, error) {
	if customerID <= 0 {
		return nil, s.reject(req, ErrCustomerRequired)
	}
	return s.run(ctx, req, SourceStaff, customerID, LinesFromSelections(selections))
}

func validateLines(lines []Line) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range lines {
		if line.Qty < 1 {
			return cart.ErrInvalidQuantity
		}
		if line.Stock >= 0 && line.Qty > line.Stock {
			if line.Name != "" {
				return api.Validation(fmt.Sprintf("Stock limit reached for %s", line.Name))
			}
			return cart.ErrStockLimit
		}
	}
	return nil
}

func (s *Service) run(ctx context.Context, req Request, source Source, customerID int64, lines []Line) (*Result, error) {
	if err := validateLines(lines); err != nil {
		return nil, s.reject(req, err)
	}

	payload := BuildOrder(customerID, lines, s.now())
	record := &journal.Run{
		ID:     uuid.New(),
		Device: req.Device,
		UserID: customerID,
		Source: string(source),
		Total:  payload.TotalPrice,
	}
	log := s.logger.WithFields(logrus.Fields{
		"run_id":  record.ID.String(),
		"source":  source,
		"user_id": customerID,
		"items":   len(lines),
	})

	sg := &saga{}
	var created *order.Order
	err := sg.do(ctx, stepCreateOrder, 0, func(ctx context.Context) error {
		o, err := s.orders.Create(ctx, req.Tokens, payload, record.ID.String())
		if err != nil {
			return err
		}
		created = o
		return nil
	}, undoCancelOrder, func(ctx context.Context) error {
		return s.orders.Cancel(ctx, req.Tokens, created.ID)
	})
	if err != nil {
		log.WithError(err).Error("Order creation failed")
		s.finish(ctx, record, sg, journal.StatusFailed, err)
		telemetry.RecordCheckout(string(journal.StatusFailed))
		notifier(req).Error(api.MessageOf(err))
		return nil, err
	}
	record.OrderID = &created.ID

	for _, line := range lines {
		if err := s.applyLine(ctx, req, sg, source, customerID, line); err != nil {
			return nil, s.partial(ctx, req, record, sg, created.ID, err, log)
		}
	}

	s.finish(ctx, record, sg, journal.StatusSucceeded, nil)
	telemetry.RecordCheckout(string(journal.StatusSucceeded))
	log.WithField("order_id", created.ID).Info("Checkout completed")
	notifier(req).Success(msgOrderPlaced)

	return &Result{
		RunID:      record.ID,
		Order:      created,
		ClearCart:  source == SourceCart,
		ReloadHint: source == SourceCart,
	}, nil
}

// applyLine decrements stock for one line and, in the cart path, deletes its cart line
func (s *Service) applyLine(ctx context.Context, req Request, sg *saga, source Source, customerID int64, line Line) error {
	stock := line.Stock
	if stock < 0 {
		product, err := s.catalog.Product(ctx, req.Tokens, line.ProductID)
		if err != nil {
			sg.steps = append(sg.steps, journal.Step{Name: stepUpdateStock, Target: line.ProductID, Error: err.Error()})
			return err
		}
		stock = product.Stock
	}

	newStock := stock - line.Qty
	if newStock < 0 {
		newStock = 0
	}
	err := sg.do(ctx, stepUpdateStock, line.ProductID, func(ctx context.Context) error {
		return s.catalog.SetStock(ctx, req.Tokens, line.ProductID, newStock)
	}, undoRestoreStock, func(ctx context.Context) error {
		return s.catalog.SetStock(ctx, req.Tokens, line.ProductID, stock)
	})
	if err != nil {
		return err
	}

	if source != SourceCart || line.CartItemID == 0 {
		return nil
	}
	return sg.do(ctx, stepDeleteCartLine, line.CartItemID, func(ctx context.Context) error {
		return s.lines.Delete(ctx, req.Tokens, line.CartItemID)
	}, undoRestoreCartLine, func(ctx context.Context) error {
		return s.lines.Add(ctx, req.Tokens, customerID, line.ProductID, line.Qty, line.Price)
	})
}

func (s *Service) partial(ctx context.Context, req Request, record *journal.Run, sg *saga, orderID int64, cause error, log *logrus.Entry) error {
	perr := &PartialError{
		OrderID:   orderID,
		Completed: sg.completed(),
		Err:       cause,
	}
	if last := sg.steps[len(sg.steps)-1]; !last.Done {
		perr.Failed = fmt.Sprintf("%s:%d", last.Name, last.Target)
	}

	if s.compensate {
		if err := sg.compensate(ctx); err != nil {
			log.WithError(err).Error("Checkout compensation incomplete")
		} else {
			perr.Compensated = true
		}
	}
	record.Compensated = perr.Compensated

	log.WithFields(logrus.Fields{
		"order_id":    orderID,
		"failed_step": perr.Failed,
		"compensated": perr.Compensated,
	}).WithError(cause).Error("Checkout partially failed")

	s.finish(ctx, record, sg, journal.StatusPartial, perr)
	telemetry.RecordCheckout(string(journal.StatusPartial))
	notifier(req).Error(msgCheckoutFailed)
	return perr
}

func (s *Service) finish(ctx context.Context, record *journal.Run, sg *saga, status journal.Status, cause error) {
	record.Status = status
	record.Steps = sg.steps
	if cause != nil {
		record.Error = cause.Error()
	}
	if err := s.journal.Record(ctx, record); err != nil {
		s.logger.WithError(err).WithField("run_id", record.ID.String()).Warn("Failed to journal checkout run")
	}
}

func (s *Service) reject(req Request, err error) error {
	telemetry.RecordCheckout("rejected")
	notifier(req).Error(api.MessageOf(err))
	return err
}

// Runs returns journaled runs with status for staff reconciliation
func (s *Service) Runs(ctx context.Context, status journal.Status, limit int) ([]journal.Run, error) {
	runs, err := s.journal.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkout runs: %w", err)
	}
	return runs, nil
}

// IsPartial reports whether err is a partially completed checkout
func IsPartial(err error) bool {
	var perr *PartialError
	return errors.As(err, &perr)
}

func notifier(req Request) notify.Notifier {
	if req.Notifier == nil {
		return notify.Discard{}
	}
	return req.Notifier
}

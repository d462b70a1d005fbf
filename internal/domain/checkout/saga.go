// internal/domain/checkout/saga.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/bakery-storefront/internal/domain/journal"
)

// Step names recorded in the journal
const (
	stepCreateOrder     = "create_order"
	stepUpdateStock     = "update_stock"
	stepDeleteCartLine  = "delete_cart_line"
	undoCancelOrder     = "cancel_order"
	undoRestoreStock    = "restore_stock"
	undoRestoreCartLine = "restore_cart_line"
)

type compensation struct {
	index int
	fn    func(context.Context) error
}

// saga runs steps in order and remembers how to undo the completed ones
type saga struct {
	steps         []journal.Step
	compensations []compensation
}

func (s *saga) do(ctx context.Context, name string, target int64, fn func(context.Context) error, undoName string, undo func(context.Context) error) error {
	step := journal.Step{Name: name, Target: target}
	if err := fn(ctx); err != nil {
		step.Error = err.Error()
		s.steps = append(s.steps, step)
		return err
	}

	step.Done = true
	if undo != nil {
		step.Undo = undoName
		s.compensations = append(s.compensations, compensation{index: len(s.steps), fn: undo})
	}
	s.steps = append(s.steps, step)
	return nil
}

// compensate undoes completed steps in reverse order. It keeps going after a
// failed undo and returns every failure joined.
func (s *saga) compensate(ctx context.Context) error {
	var errs []error
	for i := len(s.compensations) - 1; i >= 0; i-- {
		c := s.compensations[i]
		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.steps[c.index].Undo, err))
			continue
		}
		s.steps[c.index].Compensated = true
	}
	return errors.Join(errs...)
}

func (s *saga) completed() []string {
	var names []string
	for _, step := range s.steps {
		if step.Done {
			names = append(names, fmt.Sprintf("%s:%d", step.Name, step.Target))
		}
	}
	return names
}

// PartialError reports a checkout whose order was created but whose follow-up
// steps did not all complete
type PartialError struct {
	OrderID     int64
	Completed   []string
	Failed      string
	Compensated bool
	Err         error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("checkout of order %d stopped at %s after [%s]: %v",
		e.OrderID, e.Failed, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

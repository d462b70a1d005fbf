// internal/domain/order/status.go
package order

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:    {OrderStatusProcessing: true, OrderStatusCancelled: true},
	OrderStatusProcessing: {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:    {OrderStatusCompleted: true, OrderStatusCancelled: true},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

var forward = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusCompleted,
}

// CanTransition reports whether from → to is a legal single step
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Next returns the single forward step from status
func Next(status OrderStatus) (OrderStatus, bool) {
	next, ok := forward[status]
	return next, ok
}

// IsTerminal reports whether no transition leaves status
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanCancel reports whether the customer may cancel the order
func (o Order) CanCancel() bool {
	return !o.IsPaid() && !o.Status.IsTerminal()
}

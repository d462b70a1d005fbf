// internal/domain/payment/gateway.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/config"
)

// ErrGatewayUnavailable is returned when the widget cannot be configured
var ErrGatewayUnavailable = errors.New("payment gateway is not configured")

// Widget is what a browser needs to open the hosted payment widget
type Widget struct {
	ScriptURL    string `json:"script_url"`
	ClientKey    string `json:"client_key"`
	IsProduction bool   `json:"is_production"`
}

// Gateway loads the widget configuration once and caches the outcome
type Gateway struct {
	cfg config.GatewayConfig

	once   sync.Once
	widget Widget
	err    error
	loads  int
}

// NewGateway creates a new gateway loader
func NewGateway(cfg config.GatewayConfig) *Gateway {
	return &Gateway{cfg: cfg}
}

// Load returns the widget configuration. Only the first call does any work.
func (g *Gateway) Load() (Widget, error) {
	g.once.Do(func() {
		g.loads++
		if g.cfg.ClientKey == "" || g.cfg.ScriptURL == "" {
			g.err = ErrGatewayUnavailable
			return
		}
		g.widget = Widget{
			ScriptURL:    g.cfg.ScriptURL,
			ClientKey:    g.cfg.ClientKey,
			IsProduction: g.cfg.IsProduction,
		}
	})
	return g.widget, g.err
}

// Event is a callback fired by the gateway widget
type Event string

const (
	EventSuccess Event = "success"
	EventPending Event = "pending"
	EventError   Event = "error"
	EventClose   Event = "close"
)

// Valid reports whether e is a known callback
func (e Event) Valid() bool {
	switch e {
	case EventSuccess, EventPending, EventError, EventClose:
		return true
	}
	return false
}

// Handler reacts to a callback and reports whether the session is over
type Handler func(ctx context.Context, event Event) (done bool)

// Session is an open gateway widget waiting for callbacks
type Session struct {
	OrderID     int64     `json:"order_id"`
	Method      Method    `json:"payment_method"`
	Token       string    `json:"token"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	OpenedAt    time.Time `json:"opened_at"`

	device  string
	handler Handler
	mu      sync.Mutex
}

// ErrNoSession is returned for callbacks of an order without an open widget,
// or whose widget was opened by another device
var ErrNoSession = &api.Error{Kind: api.KindNotFound, Message: "No payment in progress for this order"}

// Registry holds the open gateway sessions keyed by order id. Only the device
// that opened a session may deliver its callbacks or abandon it. Sessions are
// never expired; they end on a final callback or on Abandon.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Open registers a session of device, replacing any earlier one for the same order
func (r *Registry) Open(device string, orderID int64, method Method, token TokenResponse, handler Handler) *Session {
	s := &Session{
		device:      device,
		OrderID:     orderID,
		Method:      method,
		Token:       token.Token,
		RedirectURL: token.RedirectURL,
		OpenedAt:    r.now(),
		handler:     handler,
	}

	r.mu.Lock()
	r.sessions[orderID] = s
	r.mu.Unlock()
	return s
}

// Dispatch delivers a callback from device to the session of orderID.
// Callbacks of one session are handled one at a time.
func (r *Registry) Dispatch(ctx context.Context, device string, orderID int64, event Event) error {
	if !event.Valid() {
		return api.Validation(fmt.Sprintf("Unknown payment event %q", event))
	}

	s, ok := r.Get(device, orderID)
	if !ok {
		return ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A concurrent final callback may have ended the session while we waited
	r.mu.Lock()
	current := r.sessions[orderID] == s
	r.mu.Unlock()
	if !current {
		return ErrNoSession
	}

	if s.handler(ctx, event) {
		r.remove(orderID, s)
	}
	return nil
}

// Abandon drops the session of orderID opened by device without firing any
// callback
func (r *Registry) Abandon(device string, orderID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[orderID]
	if !ok || s.device != device {
		return false
	}
	delete(r.sessions, orderID)
	return true
}

// Get returns the session of orderID opened by device
func (r *Registry) Get(device string, orderID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[orderID]
	if !ok || s.device != device {
		return nil, false
	}
	return s, true
}

// Active lists the open sessions, oldest first
func (r *Registry) Active() []*Session {
	r.mu.Lock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

func (r *Registry) remove(orderID int64, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[orderID] == s {
		delete(r.sessions, orderID)
	}
}

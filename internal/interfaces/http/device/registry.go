// internal/interfaces/http/device/registry.go
package device

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/domain/cart"
	"github.com/your-org/bakery-storefront/internal/domain/chat"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/domain/review"
	"github.com/your-org/bakery-storefront/internal/pkg/notify"
	"github.com/your-org/bakery-storefront/internal/pkg/schedule"
	"github.com/your-org/bakery-storefront/internal/session"
)

// ErrSignInRequired is returned when a view needs a signed-in customer
var ErrSignInRequired = &api.Error{Kind: api.KindUnauthorized, Message: "Please sign in to continue"}

// Registry hands out the view-state of each device
type Registry struct {
	sessions *session.Manager
	client   *api.Client
	orders   *order.Service
	chat     *chat.Service
	chatCfg  config.ChatConfig
	logger   *logrus.Logger
	now      func() time.Time

	mu      sync.Mutex
	base    context.Context
	devices map[string]*Device
	sweeper *schedule.Task
}

// NewRegistry creates an empty device registry
func NewRegistry(sessions *session.Manager, client *api.Client, orders *order.Service, chatService *chat.Service, chatCfg config.ChatConfig, logger *logrus.Logger) *Registry {
	return &Registry{
		sessions: sessions,
		client:   client,
		orders:   orders,
		chat:     chatService,
		chatCfg:  chatCfg,
		logger:   logger,
		now:      time.Now,
		base:     context.Background(),
		devices:  make(map[string]*Device),
	}
}

// SetBaseContext sets the parent context of background work such as chat polling
func (r *Registry) SetBaseContext(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = ctx
}

// Sessions returns the session manager
func (r *Registry) Sessions() *session.Manager {
	return r.sessions
}

// Get returns the state of a device, restoring its session on first use
func (r *Registry) Get(ctx context.Context, id string) (*Device, error) {
	r.mu.Lock()
	if d, ok := r.devices[id]; ok {
		d.touch(r.now())
		r.mu.Unlock()
		return d, nil
	}
	r.mu.Unlock()

	sc, err := r.sessions.Context(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.devices[id]; ok {
		d.touch(r.now())
		return d, nil
	}
	d := &Device{
		ID:       id,
		Session:  sc,
		Feed:     notify.NewFeed(notify.DefaultCapacity, r.logger.WithField("device", id)),
		registry: r,
		history:  make(map[order.Scope]*order.History),
		reviewed: review.NewReviewedSet(),
	}
	d.touch(r.now())
	r.devices[id] = d
	return d, nil
}

// StartEviction drops devices idle for longer than idle, checking every idle/2.
// Their signed-in users stay in the session store and are restored on return.
func (r *Registry) StartEviction(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}

	r.mu.Lock()
	if r.sweeper != nil {
		r.mu.Unlock()
		return
	}
	task := schedule.NewTask(idle/2, func(context.Context) {
		r.EvictIdle(idle)
	})
	r.sweeper = task
	r.mu.Unlock()

	task.Start(ctx)
}

// EvictIdle drops the devices not seen for longer than idle and returns how
// many were dropped
func (r *Registry) EvictIdle(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var evicted []*Device
	for id, d := range r.devices {
		if d.LastSeen().Before(cutoff) {
			evicted = append(evicted, d)
			delete(r.devices, id)
			r.sessions.Forget(id)
		}
	}
	r.mu.Unlock()

	for _, d := range evicted {
		d.CloseChat()
	}
	if len(evicted) > 0 {
		r.logger.WithField("count", len(evicted)).Debug("Evicted idle devices")
	}
	return len(evicted)
}

// Close stops the eviction sweep and the background work of every device
func (r *Registry) Close() {
	r.mu.Lock()
	sweeper := r.sweeper
	r.sweeper = nil
	r.mu.Unlock()
	if sweeper != nil {
		sweeper.Stop()
	}

	r.mu.Lock()
	devices := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d)
	}
	r.mu.Unlock()

	for _, d := range devices {
		d.CloseChat()
	}
}

// Len returns the number of known devices
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// Device is the view-state of one browser
type Device struct {
	ID      string
	Session *session.Context
	Feed    *notify.Feed

	registry *Registry
	lastSeen atomic.Int64

	mu             sync.Mutex
	cart           *cart.Cart
	history        map[order.Scope]*order.History
	chat           *chat.Controller
	reviewed       *review.ReviewedSet
	reviewedFor    int64
	reviewedSeeded bool
}

// LastSeen returns when the device last made a request
func (d *Device) LastSeen() time.Time {
	return time.Unix(0, d.lastSeen.Load())
}

func (d *Device) touch(now time.Time) {
	d.lastSeen.Store(now.UnixNano())
}

// CustomerID returns the signed-in customer's id, or zero
func (d *Device) CustomerID() int64 {
	if u := d.Session.Customer(); u != nil {
		return u.ID
	}
	return 0
}

// Cart returns the cart of the signed-in customer. A different customer
// gets a fresh cart.
func (d *Device) Cart() (*cart.Cart, error) {
	customerID := d.CustomerID()
	if customerID == 0 {
		return nil, ErrSignInRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cart == nil || d.cart.UserID() != customerID {
		d.cart = cart.New(d.registry.client, d.Session, customerID, d.registry.logger)
	}
	return d.cart, nil
}

// History returns the order list view of scope
func (d *Device) History(scope order.Scope) *order.History {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.history[scope]
	if !ok {
		h = order.NewHistory(d.registry.orders, d.Session, scope, d.Feed)
		d.history[scope] = h
	}
	return h
}

// ReviewSeeder fills a reviewed-products set from the customer's reviews
type ReviewSeeder interface {
	LoadReviewed(ctx context.Context, tokens api.TokenSource, set *review.ReviewedSet) error
}

// Reviewed returns the reviewed-products set of the signed-in customer. The
// set is seeded through seeder until one seeding succeeds; a failed seeding
// is returned and retried on the next call.
func (d *Device) Reviewed(ctx context.Context, seeder ReviewSeeder) (*review.ReviewedSet, error) {
	customerID := d.CustomerID()

	d.mu.Lock()
	if d.reviewedFor != customerID {
		d.reviewed = review.NewReviewedSet()
		d.reviewedFor = customerID
		d.reviewedSeeded = false
	}
	set, seeded := d.reviewed, d.reviewedSeeded
	d.mu.Unlock()

	if seeded || customerID == 0 {
		return set, nil
	}
	if err := seeder.LoadReviewed(ctx, d.Session, set); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.reviewed == set {
		d.reviewedSeeded = true
	}
	d.mu.Unlock()
	return set, nil
}

// Chat returns the chat controller, starting its user polling on first use
func (d *Device) Chat() *chat.Controller {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.chat == nil {
		d.chat = chat.NewController(d.registry.chat, d.Session, d.registry.chatCfg, d.registry.logger)
		d.registry.mu.Lock()
		base := d.registry.base
		d.registry.mu.Unlock()
		d.chat.Start(base)
	}
	return d.chat
}

// CloseChat stops chat polling of the device
func (d *Device) CloseChat() {
	d.mu.Lock()
	c := d.chat
	d.chat = nil
	d.mu.Unlock()
	if c != nil {
		c.Close()
	}
}

// SignedOut drops view-state tied to the previous user
func (d *Device) SignedOut() {
	d.CloseChat()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cart != nil {
		d.cart.Forget()
		d.cart = nil
	}
	d.history = make(map[order.Scope]*order.History)
	d.reviewed = review.NewReviewedSet()
	d.reviewedFor = 0
	d.reviewedSeeded = false
}

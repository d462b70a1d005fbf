// internal/session/manager.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bakery-storefront/internal/pkg/auth"
)

// Manager hands out one Context per device, restoring it from the store
// the first time the device is seen.
type Manager struct {
	store    Store
	logger   *logrus.Logger
	now      func() time.Time
	mu       sync.Mutex
	contexts map[string]*Context
}

// NewManager creates a new session manager
func NewManager(store Store, logger *logrus.Logger) *Manager {
	return &Manager{
		store:    store,
		logger:   logger,
		now:      time.Now,
		contexts: make(map[string]*Context),
	}
}

// Context returns the session context of a device
func (m *Manager) Context(ctx context.Context, device string) (*Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sc, ok := m.contexts[device]; ok {
		return sc, nil
	}

	sc := New()
	for _, actor := range Actors {
		user, err := m.store.Load(ctx, device, actor)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		if auth.IsExpired(user.Token, m.now()) {
			m.logger.WithFields(logrus.Fields{
				"device": device,
				"actor":  actor,
			}).Info("Dropping expired session")
			if err := m.store.Delete(ctx, device, actor); err != nil {
				m.logger.WithError(err).Warn("Failed to delete expired session")
			}
			continue
		}
		sc.Set(actor, *user)
	}

	m.contexts[device] = sc
	return sc, nil
}

// Forget drops the cached context of a device. The next Context call
// restores it from the store.
func (m *Manager) Forget(device string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, device)
}

// SignIn fills a slot and persists it
func (m *Manager) SignIn(ctx context.Context, device string, actor Actor, user User) error {
	sc, err := m.Context(ctx, device)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, device, actor, &user); err != nil {
		return err
	}
	sc.Set(actor, user)
	return nil
}

// UpdateProfile replaces the profile of a signed-in slot, keeping its token
func (m *Manager) UpdateProfile(ctx context.Context, device string, actor Actor, profile User) error {
	sc, err := m.Context(ctx, device)
	if err != nil {
		return err
	}
	token := sc.Token(actor)
	if token == "" {
		return fmt.Errorf("%s is not signed in", actor)
	}
	profile.Token = token
	return m.SignIn(ctx, device, actor, profile)
}

// SignOut clears a slot locally and in the store
func (m *Manager) SignOut(ctx context.Context, device string, actor Actor) error {
	sc, err := m.Context(ctx, device)
	if err != nil {
		return err
	}
	sc.Clear(actor)
	return m.store.Delete(ctx, device, actor)
}

// Reset signs both slots out
func (m *Manager) Reset(ctx context.Context, device string) error {
	sc, err := m.Context(ctx, device)
	if err != nil {
		return err
	}
	sc.Reset()
	for _, actor := range Actors {
		if err := m.store.Delete(ctx, device, actor); err != nil {
			return err
		}
	}
	return nil
}

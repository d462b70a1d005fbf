// internal/session/store.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/your-org/bakery-storefront/internal/infrastructure/database/redis"
)

// Store persists signed-in users per device and actor
type Store interface {
	// Load returns nil without error when nothing is stored
	Load(ctx context.Context, device string, actor Actor) (*User, error)
	Save(ctx context.Context, device string, actor Actor, user *User) error
	Delete(ctx context.Context, device string, actor Actor) error
}

// Key returns the storage key of a device slot
func Key(device string, actor Actor) string {
	return fmt.Sprintf("session:%s:%s", device, actor)
}

// RedisStore keeps sessions in Redis with a sliding TTL set on every save
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, device string, actor Actor) (*User, error) {
	var user User
	found, err := s.client.GetJSON(ctx, Key(device, actor), &user)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s session: %w", actor, err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (s *RedisStore) Save(ctx context.Context, device string, actor Actor, user *User) error {
	if err := s.client.SetJSON(ctx, Key(device, actor), user, s.ttl); err != nil {
		return fmt.Errorf("failed to save %s session: %w", actor, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, device string, actor Actor) error {
	if err := s.client.Del(ctx, Key(device, actor)); err != nil {
		return fmt.Errorf("failed to delete %s session: %w", actor, err)
	}
	return nil
}

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]User
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

func (s *MemoryStore) Load(_ context.Context, device string, actor Actor) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[Key(device, actor)]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *MemoryStore) Save(_ context.Context, device string, actor Actor, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[Key(device, actor)] = *user
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, device string, actor Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, Key(device, actor))
	return nil
}

// internal/interfaces/http/middleware/submit_guard.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Locker hands out short-lived exclusive keys
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisLocker implements Locker with SET NX
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a Redis-backed locker
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire sets key if it is not held yet
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
}

// Release frees key
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}

// MemoryLocker implements Locker in process memory
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

// NewMemoryLocker creates an in-memory locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]time.Time)}
}

// Acquire sets key if it is not held or its hold expired
func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if until, ok := l.held[key]; ok && time.Now().Before(until) {
		return false, nil
	}
	l.held[key] = time.Now().Add(ttl)
	return true, nil
}

// Release frees key
func (l *MemoryLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// SubmitGuard rejects a second submission of the same action from the same
// device while the first is still in flight. window bounds how long a crashed
// request can hold the key. If the locker is unreachable the request passes.
func SubmitGuard(locker Locker, window time.Duration, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetString(DeviceIDKey)
		if deviceID == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("submit_guard:%s:%s %s", deviceID, c.Request.Method, c.FullPath())

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		acquired, err := locker.Acquire(ctx, key, window)
		cancel()
		if err != nil {
			logger.WithError(err).WithField("key", key).Warn("Submit guard unavailable, allowing request")
			c.Next()
			return
		}

		if !acquired {
			c.JSON(http.StatusConflict, gin.H{
				"error": "This request is already being processed",
			})
			c.Abort()
			return
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := locker.Release(ctx, key); err != nil {
				logger.WithError(err).WithField("key", key).Warn("Failed to release submit guard")
			}
		}()

		c.Next()
	}
}

// internal/pkg/notify/notify.go
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level of a user-visible notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a single toast shown to the user
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier publishes non-blocking user notifications
type Notifier interface {
	Success(message string)
	Info(message string)
	Error(message string)
}

// DefaultCapacity is how many notifications a feed retains
const DefaultCapacity = 20

// Feed keeps the most recent notifications of one device until drained
type Feed struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	logger   *logrus.Entry
}

// NewFeed creates a new notification feed
func NewFeed(capacity int, logger *logrus.Entry) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{capacity: capacity, logger: logger}
}

func (f *Feed) Success(message string) { f.push(LevelSuccess, message) }
func (f *Feed) Info(message string)    { f.push(LevelInfo, message) }
func (f *Feed) Error(message string)   { f.push(LevelError, message) }

// Drain returns queued notifications oldest first and empties the feed
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.items
	f.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len returns the number of queued notifications
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Feed) push(level Level, message string) {
	if f.logger != nil {
		entry := f.logger.WithField("level_ui", level)
		if level == LevelError {
			entry.Warn(message)
		} else {
			entry.Info(message)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, Notification{Level: level, Message: message, CreatedAt: time.Now()})
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
}

// Discard is a Notifier that drops everything
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Info(string)    {}
func (Discard) Error(string)   {}

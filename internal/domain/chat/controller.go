// internal/domain/chat/controller.go
package chat

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/pkg/schedule"
)

// Controller is the chat screen of one device. A coarse task refreshes the
// conversation partners; a fine task refreshes the selected conversation
// and only runs while one is selected.
type Controller struct {
	service *Service
	tokens  api.TokenSource
	cfg     config.ChatConfig
	logger  *logrus.Entry

	mu            sync.Mutex
	base          context.Context
	closed        bool
	users         []User
	selected      int64
	messages      []Message
	usersTask     *schedule.Task
	messagesTask  *schedule.Task
	cancelRefetch func()
}

// NewController creates an idle chat controller
func NewController(service *Service, tokens api.TokenSource, cfg config.ChatConfig, logger *logrus.Logger) *Controller {
	c := &Controller{
		service: service,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logger.WithField("component", "chat"),
		base:    context.Background(),
	}
	c.usersTask = schedule.NewTask(cfg.UsersInterval, c.refreshUsers)
	return c
}

// Start begins polling the user list. Tasks live until Close or until ctx ends.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.base = ctx
	c.mu.Unlock()
	c.usersTask.Start(ctx)
}

// Select opens the conversation with userID, replacing the previous one.
// At most one message task is installed at any time.
func (c *Controller) Select(userID int64) {
	if userID <= 0 {
		c.Deselect()
		return
	}

	task := schedule.NewTask(c.cfg.MessagesInterval, func(ctx context.Context) {
		c.refreshMessages(ctx, userID)
	})

	c.mu.Lock()
	if c.closed || (c.messagesTask != nil && c.selected == userID) {
		c.mu.Unlock()
		return
	}
	old := c.messagesTask
	c.stopRefetchLocked()
	c.selected = userID
	c.messages = nil
	c.messagesTask = task
	task.Start(c.base)
	c.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	c.logger.WithField("user_id", userID).Debug("Conversation selected")
}

// Deselect closes the open conversation and stops its polling
func (c *Controller) Deselect() {
	c.mu.Lock()
	task := c.messagesTask
	c.messagesTask = nil
	c.selected = 0
	c.messages = nil
	c.stopRefetchLocked()
	c.mu.Unlock()

	if task != nil {
		task.Stop()
	}
}

// Close stops every task of the controller. A closed controller ignores Select.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.Deselect()
	c.usersTask.Stop()
}

// Send posts text to the selected conversation, appends the stored message
// and schedules a re-fetch to pick up read state
func (c *Controller) Send(ctx context.Context, text string) (*Message, error) {
	c.mu.Lock()
	receiver := c.selected
	c.mu.Unlock()
	if receiver == 0 {
		return nil, ErrNoConversation
	}

	msg, err := c.service.Send(ctx, c.tokens, receiver, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != receiver {
		return msg, nil
	}
	if !containsMessage(c.messages, msg.ID) {
		c.messages = append(c.messages, *msg)
	}

	c.stopRefetchLocked()
	c.cancelRefetch = schedule.After(c.base, c.cfg.RefetchDelay, func(ctx context.Context) {
		c.refreshMessages(ctx, receiver)
	})
	return msg, nil
}

// Users returns the last fetched conversation partners
func (c *Controller) Users() []User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]User(nil), c.users...)
}

// Messages returns the selected conversation
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Selected returns the selected partner, or zero
func (c *Controller) Selected() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Polling reports whether the user and message tasks are running
func (c *Controller) Polling() (users, messages bool) {
	c.mu.Lock()
	task := c.messagesTask
	c.mu.Unlock()
	return c.usersTask.Running(), task != nil && task.Running()
}

func (c *Controller) refreshUsers(ctx context.Context) {
	users, err := c.service.Users(ctx, c.tokens)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.WithError(err).Warn("Failed to refresh chat users")
		}
		return
	}

	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
}

func (c *Controller) refreshMessages(ctx context.Context, userID int64) {
	messages, err := c.service.Messages(ctx, c.tokens, userID)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to refresh messages")
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The conversation may have changed while the request was in flight
	if c.selected != userID {
		return
	}
	c.messages = dedupe(messages)
}

func (c *Controller) stopRefetchLocked() {
	if c.cancelRefetch != nil {
		c.cancelRefetch()
		c.cancelRefetch = nil
	}
}

func containsMessage(messages []Message, id int64) bool {
	for _, m := range messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

// dedupe drops repeated ids, keeping server order
func dedupe(messages []Message) []Message {
	seen := make(map[int64]bool, len(messages))
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

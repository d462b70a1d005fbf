// internal/domain/chat/service.go
package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/your-org/bakery-storefront/internal/api"
)

// Validation failures raised before any API call
var (
	ErrEmptyMessage   = api.Validation("Message cannot be empty")
	ErrNoConversation = api.Validation("Please select a conversation")
)

// Service wraps the chat endpoints
type Service struct {
	client *api.Client
}

// NewService creates a new chat service
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Users returns the users the caller has conversations with
func (s *Service) Users(ctx context.Context, tokens api.TokenSource) ([]User, error) {
	var users []User
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: api.ChatUsers}, &users); err != nil {
		return nil, fmt.Errorf("failed to fetch chat users: %w", err)
	}
	return users, nil
}

// Messages returns the conversation with userID in server order
func (s *Service) Messages(ctx context.Context, tokens api.TokenSource, userID int64) ([]Message, error) {
	var messages []Message
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ChatMessages,
		PathArgs: []string{strconv.FormatInt(userID, 10)},
	}, &messages)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages with user %d: %w", userID, err)
	}
	return messages, nil
}

// Send posts a message to receiverID and returns the stored message
func (s *Service) Send(ctx context.Context, tokens api.TokenSource, receiverID int64, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if receiverID <= 0 {
		return nil, ErrNoConversation
	}

	var msg Message
	err := s.client.Do(ctx, tokens, api.Call{
		Endpoint: api.ChatSend,
		Body:     sendRequest{ReceiverID: receiverID, Message: text},
	}, &msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &msg, nil
}

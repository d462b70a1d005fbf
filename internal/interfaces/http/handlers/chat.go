// internal/interfaces/http/handlers/chat.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/chat"
)

// ChatHandler exposes the polling chat view of a device
type ChatHandler struct{}

// NewChatHandler creates a new chat handler
func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

// SendMessageRequest is a new chat message
type SendMessageRequest struct {
	Message string `json:"message"`
}

// ChatView is the current state of the chat screen
type ChatView struct {
	Users           []chat.User    `json:"users"`
	Selected        int64          `json:"selected_user_id,omitempty"`
	Messages        []chat.Message `json:"messages"`
	PollingUsers    bool           `json:"polling_users"`
	PollingMessages bool           `json:"polling_messages"`
}

// GetUsers handles GET /chat/users. The first call starts polling.
func (h *ChatHandler) GetUsers(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	respondOK(c, "Chat retrieved successfully", chatView(d.Chat()))
}

// SelectConversation handles PUT /chat/conversation/:userId
func (h *ChatHandler) SelectConversation(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}

	ctl := d.Chat()
	ctl.Select(userID)

	respondOK(c, "Conversation selected", chatView(ctl))
}

// CloseConversation handles DELETE /chat/conversation
func (h *ChatHandler) CloseConversation(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	ctl := d.Chat()
	ctl.Deselect()

	respondOK(c, "Conversation closed", chatView(ctl))
}

// GetMessages handles GET /chat/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	ctl := d.Chat()
	if ctl.Selected() == 0 {
		respondError(c, chat.ErrNoConversation)
		return
	}

	respondOK(c, "Messages retrieved successfully", chatView(ctl))
}

// SendMessage handles POST /chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	msg, err := d.Chat().Send(c.Request.Context(), req.Message)
	if err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

// Leave handles DELETE /chat and stops all polling of the device
func (h *ChatHandler) Leave(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	d.CloseChat()

	c.JSON(http.StatusOK, gin.H{
		"message": "Chat closed",
	})
}

func chatView(ctl *chat.Controller) ChatView {
	users, messages := ctl.Polling()
	view := ChatView{
		Users:           ctl.Users(),
		Selected:        ctl.Selected(),
		Messages:        ctl.Messages(),
		PollingUsers:    users,
		PollingMessages: messages,
	}
	if view.Users == nil {
		view.Users = []chat.User{}
	}
	if view.Messages == nil {
		view.Messages = []chat.Message{}
	}
	return view
}

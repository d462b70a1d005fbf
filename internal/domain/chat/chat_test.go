package chat

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/your-org/bakery-storefront/internal/api/apitest"
	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/pkg/logger"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		UsersInterval:    40 * time.Millisecond,
		MessagesInterval: 10 * time.Millisecond,
		RefetchDelay:     5 * time.Millisecond,
	}
}

// fakeChatAPI serves a conversation with user 7
type fakeChatAPI struct {
	mu       sync.Mutex
	messages []Message
	nextID   int64
}

func (f *fakeChatAPI) register(srv *apitest.Server) {
	srv.Handle(http.MethodGet, "/chat/users", http.StatusOK, []User{{ID: 7, Name: "Sari"}, {ID: 8, Name: "Budi"}})
	srv.HandleFunc(http.MethodGet, "/chat/messages/7", func(apitest.Call) (int, any) {
		f.mu.Lock()
		defer f.mu.Unlock()
		return http.StatusOK, map[string]any{"data": f.messages}
	})
	srv.Handle(http.MethodGet, "/chat/messages/8", http.StatusOK, []Message{})
	srv.HandleFunc(http.MethodPost, "/chat/send", func(call apitest.Call) (int, any) {
		var req sendRequest
		call.Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		msg := Message{ID: f.nextID, SenderID: 1, ReceiverID: req.ReceiverID, Text: req.Message}
		f.messages = append(f.messages, msg)
		return http.StatusCreated, map[string]any{"data": msg}
	})
}

func setupChatTest(t *testing.T) (*Controller, *apitest.Server, *fakeChatAPI) {
	t.Helper()
	srv := apitest.NewServer(t)
	fake := &fakeChatAPI{
		messages: []Message{{ID: 1, SenderID: 7, ReceiverID: 1, Text: "Halo"}},
		nextID:   1,
	}
	fake.register(srv)

	c := NewController(NewService(srv.Client()), apitest.Customer(), testChatConfig(), logger.Discard())
	t.Cleanup(c.Close)
	return c, srv, fake
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestController_Start_LoadsUsers(t *testing.T) {
	c, _, _ := setupChatTest(t)
	c.Start(context.Background())

	waitFor(t, "users", func() bool { return len(c.Users()) == 2 })
	users, messages := c.Polling()
	if !users || messages {
		t.Errorf("Expected only the users task running, got users=%v messages=%v", users, messages)
	}
}

func TestController_Select_PollsMessages(t *testing.T) {
	c, srv, _ := setupChatTest(t)
	c.Start(context.Background())
	c.Select(7)

	waitFor(t, "messages", func() bool { return len(c.Messages()) == 1 })
	waitFor(t, "repeated polls", func() bool { return len(srv.CallsTo(http.MethodGet, "/chat/messages/7")) >= 3 })

	c.Select(8)
	if c.Selected() != 8 {
		t.Errorf("Expected user 8 selected, got %d", c.Selected())
	}
	before := len(srv.CallsTo(http.MethodGet, "/chat/messages/7"))
	time.Sleep(40 * time.Millisecond)
	if after := len(srv.CallsTo(http.MethodGet, "/chat/messages/7")); after != before {
		t.Errorf("Expected polling of user 7 to stop, got %d more calls", after-before)
	}
	if len(c.Messages()) != 0 {
		t.Errorf("Expected empty conversation with user 8, got %d messages", len(c.Messages()))
	}
}

func TestController_Deselect_StopsMessagePolling(t *testing.T) {
	c, srv, _ := setupChatTest(t)
	c.Start(context.Background())
	c.Select(7)
	waitFor(t, "messages", func() bool { return len(c.Messages()) == 1 })

	c.Deselect()
	before := len(srv.CallsTo(http.MethodGet, "/chat/messages/7"))
	time.Sleep(40 * time.Millisecond)
	if after := len(srv.CallsTo(http.MethodGet, "/chat/messages/7")); after != before {
		t.Errorf("Expected no message polls after deselect, got %d more", after-before)
	}
	if users, messages := c.Polling(); !users || messages {
		t.Errorf("Expected users polling only, got users=%v messages=%v", users, messages)
	}
}

func TestController_Send_AppendsOnceAndRefetches(t *testing.T) {
	c, srv, _ := setupChatTest(t)
	c.Start(context.Background())
	c.Select(7)
	waitFor(t, "messages", func() bool { return len(c.Messages()) == 1 })

	msg, err := c.Send(context.Background(), "  Roti masih ada?  ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if msg.Text != "Roti masih ada?" {
		t.Errorf("Expected trimmed text, got %q", msg.Text)
	}

	// The re-fetch returns the sent message again; ids keep it single
	before := len(srv.CallsTo(http.MethodGet, "/chat/messages/7"))
	waitFor(t, "refetch", func() bool { return len(srv.CallsTo(http.MethodGet, "/chat/messages/7")) > before })

	messages := c.Messages()
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[1].ID != msg.ID {
		t.Errorf("Expected sent message last, got id %d", messages[1].ID)
	}
}

func TestController_Send_RequiresConversation(t *testing.T) {
	c, srv, _ := setupChatTest(t)

	if _, err := c.Send(context.Background(), "Halo"); !errors.Is(err, ErrNoConversation) {
		t.Errorf("Expected ErrNoConversation, got %v", err)
	}
	if n := len(srv.CallsTo(http.MethodPost, "/chat/send")); n != 0 {
		t.Errorf("Expected no send calls, got %d", n)
	}
}

func TestController_Send_RejectsEmpty(t *testing.T) {
	c, srv, _ := setupChatTest(t)
	c.Select(7)

	if _, err := c.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Expected ErrEmptyMessage, got %v", err)
	}
	if n := len(srv.CallsTo(http.MethodPost, "/chat/send")); n != 0 {
		t.Errorf("Expected no send calls, got %d", n)
	}
}

func TestController_Close_StopsEverything(t *testing.T) {
	c, _, _ := setupChatTest(t)
	c.Start(context.Background())
	c.Select(7)

	c.Close()
	if users, messages := c.Polling(); users || messages {
		t.Errorf("Expected no polling after close, got users=%v messages=%v", users, messages)
	}
}

func TestController_Select_ConcurrentLeavesNoStrayTask(t *testing.T) {
	c, srv, _ := setupChatTest(t)
	c.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c.Select(userID)
		}(int64(7 + i%2))
	}
	wg.Wait()

	c.Close()
	before := len(srv.CallsTo(http.MethodGet, "/chat/messages/7")) + len(srv.CallsTo(http.MethodGet, "/chat/messages/8"))
	time.Sleep(40 * time.Millisecond)
	after := len(srv.CallsTo(http.MethodGet, "/chat/messages/7")) + len(srv.CallsTo(http.MethodGet, "/chat/messages/8"))
	if after != before {
		t.Errorf("Expected no message polls after close, got %d more", after-before)
	}
}

func TestController_Select_IgnoredAfterClose(t *testing.T) {
	c, srv, _ := setupChatTest(t)
	c.Close()

	c.Select(7)
	time.Sleep(20 * time.Millisecond)
	if n := len(srv.CallsTo(http.MethodGet, "/chat/messages/7")); n != 0 {
		t.Errorf("Expected no message polls on a closed controller, got %d", n)
	}
	if c.Selected() != 0 {
		t.Errorf("Expected nothing selected, got %d", c.Selected())
	}
}

func TestDedupe_KeepsServerOrder(t *testing.T) {
	out := dedupe([]Message{{ID: 3}, {ID: 1}, {ID: 3}, {ID: 2}})
	if len(out) != 3 || out[0].ID != 3 || out[1].ID != 1 || out[2].ID != 2 {
		t.Errorf("Expected [3 1 2], got %+v", out)
	}
}

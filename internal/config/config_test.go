package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test/api/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.API.BaseURL != "http://api.test/api" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.API.BaseURL)
	}
	if cfg.Chat.UsersInterval != 30*time.Second {
		t.Errorf("Expected users interval 30s, got %s", cfg.Chat.UsersInterval)
	}
	if cfg.Chat.MessagesInterval != 5*time.Second {
		t.Errorf("Expected messages interval 5s, got %s", cfg.Chat.MessagesInterval)
	}
	if cfg.Checkout.Compensate {
		t.Error("Expected compensation to be disabled by default")
	}
	if len(cfg.Security.CORSAllowedOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", cfg.Security.CORSAllowedOrigins)
	}
	if cfg.JournalEnabled() {
		t.Error("Expected journal disabled without DB_HOST")
	}
}

func TestValidate_RejectsRelativeBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "/api")

	if _, err := Load(); err == nil {
		t.Error("Expected error for relative API base URL")
	}
}

func TestValidate_RejectsSlowMessagePolling(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test")
	t.Setenv("CHAT_USERS_INTERVAL", "10s")
	t.Setenv("CHAT_MESSAGES_INTERVAL", "10s")

	if _, err := Load(); err == nil {
		t.Error("Expected error when messages interval is not shorter than users interval")
	}
}

package notify

import (
	"fmt"
	"testing"

	"github.com/your-org/bakery-storefront/internal/pkg/logger"
)

func TestFeed_DrainReturnsInOrder(t *testing.T) {
	feed := NewFeed(5, logger.Discard().WithField("device", "d"))
	feed.Success("Order placed")
	feed.Error("Payment failed")

	got := feed.Drain()
	if len(got) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(got))
	}
	if got[0].Level != LevelSuccess || got[1].Level != LevelError {
		t.Errorf("Expected success then error, got %s then %s", got[0].Level, got[1].Level)
	}
	if feed.Len() != 0 {
		t.Errorf("Expected empty feed after drain, got %d", feed.Len())
	}
}

func TestFeed_KeepsMostRecent(t *testing.T) {
	feed := NewFeed(3, nil)
	for i := 0; i < 5; i++ {
		feed.Info(fmt.Sprintf("n%d", i))
	}

	got := feed.Drain()
	if len(got) != 3 {
		t.Fatalf("Expected 3 notifications, got %d", len(got))
	}
	if got[0].Message != "n2" || got[2].Message != "n4" {
		t.Errorf("Expected n2..n4, got %s..%s", got[0].Message, got[2].Message)
	}
}

// internal/domain/journal/entity.go
package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the outcome of a checkout run
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusPartial   Status = "partial"
)

// Step records one API call of a checkout run
type Step struct {
	Name   string `json:"name"`
	Target int64  `json:"target,omitempty"`
	Done   bool   `json:"done"`
	Error  string `json:"error,omitempty"`
	// Undo names the compensating action, if the step has one
	Undo        string `json:"undo,omitempty"`
	Compensated bool   `json:"compensated,omitempty"`
}

// Run represents one execution of the checkout pipeline
type Run struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Device      string          `gorm:"size:64;index" json:"device"`
	UserID      int64           `gorm:"not null;index" json:"user_id"`
	OrderID     *int64          `gorm:"index" json:"order_id,omitempty"`
	Source      string          `gorm:"size:20;not null" json:"source"`
	Status      Status          `gorm:"size:20;not null;index" json:"status"`
	Total       decimal.Decimal `gorm:"type:numeric(14,2)" json:"total"`
	Steps       []Step          `gorm:"serializer:json;type:text" json:"steps"`
	Error       string          `gorm:"type:text" json:"error,omitempty"`
	Compensated bool            `json:"compensated"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName overrides the table name
func (Run) TableName() string {
	return "checkout_runs"
}

// internal/domain/journal/repository.go
package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Journal records checkout runs for later reconciliation by staff
type Journal interface {
	Record(ctx context.Context, run *Run) error
	ListByStatus(ctx context.Context, status Status, limit int) ([]Run, error)
}

// Repository is the gorm-backed journal
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new journal repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts a run, assigning an id when missing
func (r *Repository) Record(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record checkout run: %w", err)
	}
	return nil
}

// ListByStatus returns the most recent runs with status
func (r *Repository) ListByStatus(ctx context.Context, status Status, limit int) ([]Run, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var runs []Run
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checkout runs: %w", err)
	}
	return runs, nil
}

// Nop is used when no journal database is configured
type Nop struct{}

func (Nop) Record(context.Context, *Run) error { return nil }

func (Nop) ListByStatus(context.Context, Status, int) ([]Run, error) {
	return []Run{}, nil
}

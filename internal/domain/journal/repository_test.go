package journal

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupJournalTest(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open gorm: %v", err)
	}
	return NewRepository(gdb), mock
}

func TestRepository_Record_Success(t *testing.T) {
	repo, mock := setupJournalTest(t)

	orderID := int64(42)
	run := &Run{
		UserID:  3,
		OrderID: &orderID,
		Source:  "cart",
		Status:  StatusPartial,
		Total:   decimal.NewFromInt(35000),
		Steps:   []Step{{Name: "create_order", Target: 42, Done: true, Undo: "cancel_order"}},
		Error:   "failed to update stock",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "checkout_runs"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Record(context.Background(), run); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if run.ID == uuid.Nil {
		t.Error("Expected run id to be assigned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestRepository_Record_DatabaseError(t *testing.T) {
	repo, mock := setupJournalTest(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "checkout_runs"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if err := repo.Record(context.Background(), &Run{UserID: 3, Source: "cart", Status: StatusFailed}); err == nil {
		t.Error("Expected error when insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestRepository_ListByStatus_Success(t *testing.T) {
	repo, mock := setupJournalTest(t)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "device", "user_id", "order_id", "source", "status", "total", "steps", "error", "compensated", "created_at", "updated_at"}).
		AddRow(id.String(), "dev-1", 3, 42, "cart", "partial", "35000", `[{"name":"create_order","target":42,"done":true}]`, "stock", false, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_runs" WHERE status = $1 ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	runs, err := repo.ListByStatus(context.Background(), StatusPartial, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != id || runs[0].OrderID == nil || *runs[0].OrderID != 42 {
		t.Errorf("Unexpected run %+v", runs[0])
	}
	if len(runs[0].Steps) != 1 || runs[0].Steps[0].Name != "create_order" {
		t.Errorf("Expected decoded steps, got %+v", runs[0].Steps)
	}
	if !runs[0].Total.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("Expected total 35000, got %s", runs[0].Total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

package postgres

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMigrationTest(t *testing.T) (*Migration, sqlmock.Sqlmock) {
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
	return NewMigration(gdb), mock
}

func TestMigration_CreateIndexes_Success(t *testing.T) {
	m, mock := setupMigrationTest(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_checkout_runs_status_created")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_checkout_runs_user_created")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := m.CreateIndexes(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestMigration_CreateIndexes_Failure(t *testing.T) {
	m, mock := setupMigrationTest(t)

	mock.ExpectExec("CREATE INDEX").WillReturnError(errors.New("permission denied"))

	if err := m.CreateIndexes(); err == nil {
		t.Error("Expected error when index creation fails")
	}
}

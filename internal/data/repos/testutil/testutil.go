// Package testutil provides the shared Postgres harness for repository
// tests. Tests are skipped unless TEST_POSTGRES_DSN points at a scratch
// database; each test runs inside a transaction that is rolled back.
package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/lingobridge-backend/internal/data/db"
	"github.com/yungbote/lingobridge-backend/internal/pkg/logger"
)

var (
	dbOnce sync.Once
	dbConn *gorm.DB
	dbErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("testutil: logger: %v", err)
	}
	return log
}

// DB returns the shared test database, migrating it on first use.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set; skipping repository tests")
	}
	dbOnce.Do(func() {
		dbConn, dbErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if dbErr != nil {
			return
		}
		dbErr = autoMigrateAll(dbConn)
	})
	if dbErr != nil {
		tb.Fatalf("testutil: open test database: %v", dbErr)
	}
	return dbConn
}

// Tx begins a transaction on the test database and rolls it back when the
// test finishes, so tests never leak rows into each other.
func Tx(tb testing.TB) *gorm.DB {
	tb.Helper()
	tx := DB(tb).Begin()
	if tx.Error != nil {
		tb.Fatalf("testutil: begin transaction: %v", tx.Error)
	}
	tb.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

// autoMigrateAll mirrors the boot migration, partial indexes included, so
// uniqueness behavior in tests matches production.
func autoMigrateAll(conn *gorm.DB) error {
	if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		return err
	}
	if err := db.EnsureUserIndexes(conn); err != nil {
		return err
	}
	return db.EnsureCardIndexes(conn)
}

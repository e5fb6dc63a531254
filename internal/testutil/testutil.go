package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"nudge/internal/db"
	"nudge/internal/task"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	seq atomic.Int64
)

func gormConfig() *gorm.Config {
	cfg := db.Config()
	cfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	return cfg
}

// DB opens a fresh in-memory sqlite database with the schema and the
// built-in task catalog.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))

	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	Seed(tb, gdb)
	return gdb
}

// PostgresDB returns a shared postgres database, or skips when TEST_POSTGRES_DSN is unset.
func PostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), gormConfig())
		if pgErr != nil {
			return
		}
		pgErr = db.AutoMigrateAndIndexes(pgDB)
	})

	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

// Tx begins a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// Seed inserts the built-in catalog.
func Seed(tb testing.TB, gdb *gorm.DB) {
	tb.Helper()
	tasks, err := task.SeedTasks()
	if err != nil {
		tb.Fatalf("seed tasks: %v", err)
	}
	if _, err := task.Seed(context.Background(), gdb, tasks); err != nil {
		tb.Fatalf("seed: %v", err)
	}
}

// Catalog loads the catalog from the database.
func Catalog(tb testing.TB, gdb *gorm.DB) *task.Catalog {
	tb.Helper()
	c, err := task.Load(context.Background(), gdb)
	if err != nil {
		tb.Fatalf("load catalog: %v", err)
	}
	return c
}

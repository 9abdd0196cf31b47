// Package testdb provides database fixtures for tests: a throwaway
// PostgreSQL container and a temporary SQLite file.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/repo"
)

// testcontainers panics when Docker is missing, so check for it first.
func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// SetupPostgres создает тестовую БД с помощью testcontainers
func SetupPostgres(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	if !dockerAvailable() {
		t.Skip("Docker not available, skipping PostgreSQL integration test")
	}
	ctx := context.Background()

	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	migrationsPath := filepath.Join(projectRoot, "migrations")

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(filepath.Join(migrationsPath, "001_create_task.up.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}
	return pool, cleanup
}

// SetupSQLite returns a repository backed by a fresh file in t.TempDir().
func SetupSQLite(t *testing.T) *repo.SQLiteEntryRepo {
	t.Helper()
	return repo.NewSQLiteEntryRepo(OpenSQLite(t))
}

// OpenSQLite opens a migrated database in t.TempDir() and closes it on cleanup.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := repo.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "todomvc.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TruncateTables очищает все таблицы
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "TRUNCATE task"); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedEntries creates count active entries named "Task 1".."Task n".
func SeedEntries(t *testing.T, r repo.EntryRepository, count int) []model.Entry {
	t.Helper()
	ctx := context.Background()

	entries := make([]model.Entry, 0, count)
	for i := 0; i < count; i++ {
		e, err := r.Create(ctx, fmt.Sprintf("Task %d", i+1))
		if err != nil {
			t.Fatalf("Failed to seed entry: %v", err)
		}
		entries = append(entries, e)
	}
	return entries
}

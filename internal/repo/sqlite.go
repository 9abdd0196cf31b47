package repo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/migrations"
)

// SQLiteEntryRepo is the embedded alternative to EntryRepo. It has the same
// semantics; ids are stored in their canonical text form.
type SQLiteEntryRepo struct {
	db *sql.DB
}

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// OpenSQLite opens (creating if needed) the database file at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	stmts, err := migrations.Up()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply migration: %w", err)
		}
	}
	return db, nil
}

func NewSQLiteEntryRepo(db *sql.DB) *SQLiteEntryRepo {
	return &SQLiteEntryRepo{db: db}
}

func (r *SQLiteEntryRepo) Create(ctx context.Context, content string) (model.Entry, error) {
	e := model.NewEntry(content)
	if err := sqliteInsert(ctx, r.db, e); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}

func (r *SQLiteEntryRepo) Insert(ctx context.Context, e model.Entry) error {
	return sqliteInsert(ctx, r.db, e)
}

func (r *SQLiteEntryRepo) List(ctx context.Context) ([]model.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, completed, editing
		FROM task
		ORDER BY content, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return entries, nil
}

func (r *SQLiteEntryRepo) Get(ctx context.Context, id uuid.UUID) (*model.Entry, error) {
	return sqliteGet(ctx, r.db, id)
}

func (r *SQLiteEntryRepo) Update(ctx context.Context, id uuid.UUID, e model.Entry) error {
	return sqliteUpdate(ctx, r.db, id, e)
}

func (r *SQLiteEntryRepo) UpdateAll(ctx context.Context, entries []model.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		existing, err := sqliteGet(ctx, tx, e.ID)
		if err != nil || existing == nil {
			if err := sqliteInsert(ctx, tx, e); err != nil {
				return err
			}
			continue
		}
		if err := sqliteUpdate(ctx, tx, e.ID, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteEntryRepo) Remove(ctx context.Context, id uuid.UUID) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("cannot get task with id %s: %w", id, err)
	}
	if existing == nil {
		n, err := r.Count(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrorTableEmpty
		}
		return ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM task WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *SQLiteEntryRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM task").Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func sqliteInsert(ctx context.Context, q sqlQuerier, e model.Entry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO task (id, content, completed, editing)
		VALUES (?, ?, ?, ?)
	`, e.ID.String(), e.Content, e.Completed, e.Editing)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrorConflict
	}
	return err
}

func sqliteGet(ctx context.Context, q sqlQuerier, id uuid.UUID) (*model.Entry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, content, completed, editing
		FROM task
		WHERE id = ?
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	found, err := scanEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return pickOne(id, found)
}

func sqliteUpdate(ctx context.Context, q sqlQuerier, id uuid.UUID, e model.Entry) error {
	res, err := q.ExecContext(ctx, `
		UPDATE task
		SET content = ?, completed = ?, editing = ?
		WHERE id = ?
	`, e.Content, e.Completed, e.Editing, id.String())
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrorNotFound
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]model.Entry, error) {
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		var (
			e  model.Entry
			id string
		)
		if err := rows.Scan(&id, &e.Content, &e.Completed, &e.Editing); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", id, err)
		}
		e.ID = parsed
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

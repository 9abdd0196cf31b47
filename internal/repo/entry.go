package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/migrations"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type EntryRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewEntryRepo(pool *pgxpool.Pool) *EntryRepo {
	return &EntryRepo{
		pool: pool,
	}
}

// Migrate applies the embedded schema.
func (r *EntryRepo) Migrate(ctx context.Context) error {
	stmts, err := migrations.Up()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

func (r *EntryRepo) Create(ctx context.Context, content string) (model.Entry, error) {
	e := model.NewEntry(content)
	if err := insertEntry(ctx, r.pool, e); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}

func (r *EntryRepo) Insert(ctx context.Context, e model.Entry) error {
	return insertEntry(ctx, r.pool, e)
}

func (r *EntryRepo) List(ctx context.Context) ([]model.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, content, completed, editing
		FROM task
		ORDER BY content, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Entry])
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return entries, nil
}

func (r *EntryRepo) Get(ctx context.Context, id uuid.UUID) (*model.Entry, error) {
	return getEntry(ctx, r.pool, id)
}

func (r *EntryRepo) Update(ctx context.Context, id uuid.UUID, e model.Entry) error {
	return updateEntry(ctx, r.pool, id, e)
}

// UpdateAll upserts every entry inside one transaction: either all entries
// land or none do.
func (r *EntryRepo) UpdateAll(ctx context.Context, entries []model.Entry) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, e := range entries {
			// Поиск идет в точке сохранения, чтобы его ошибка не прерывала транзакцию
			var existing *model.Entry
			err := pgx.BeginFunc(ctx, tx, func(sp pgx.Tx) error {
				var err error
				existing, err = getEntry(ctx, sp, e.ID)
				return err
			})
			if err != nil || existing == nil {
				// Ошибка поиска трактуется как отсутствие записи
				if err := insertEntry(ctx, tx, e); err != nil {
					return err
				}
				continue
			}
			if err := updateEntry(ctx, tx, e.ID, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Remove checks that the row exists before deleting it.
func (r *EntryRepo) Remove(ctx context.Context, id uuid.UUID) error {
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

	cmd, err := r.pool.Exec(ctx, "DELETE FROM task WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *EntryRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM task").Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func insertEntry(ctx context.Context, q querier, e model.Entry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO task (id, content, completed, editing)
		VALUES ($1, $2, $3, $4)
	`, e.ID, e.Content, e.Completed, e.Editing)
	return mapError(err)
}

func getEntry(ctx context.Context, q querier, id uuid.UUID) (*model.Entry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, content, completed, editing
		FROM task
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	defer rows.Close()

	var found []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.Content, &e.Completed, &e.Editing); err != nil {
			return nil, err
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pickOne(id, found)
}

func updateEntry(ctx context.Context, q querier, id uuid.UUID, e model.Entry) error {
	cmd, err := q.Exec(ctx, `
		UPDATE task
		SET content = $2, completed = $3, editing = $4
		WHERE id = $1
	`, id, e.Content, e.Completed, e.Editing)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// pickOne enforces the one-row-per-id invariant on a lookup result.
func pickOne(id uuid.UUID, found []model.Entry) (*model.Entry, error) {
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: got %d tasks when querying id %s", ErrorAmbiguousID, len(found), id)
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}

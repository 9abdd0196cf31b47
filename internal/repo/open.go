package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open connects to the database named by dsn and returns a ready repository
// plus the function that releases its pool. postgres:// and postgresql://
// select PostgreSQL; file: and sqlite: select the embedded SQLite backend.
func Open(ctx context.Context, dsn string, maxConns int32) (EntryRepository, func(), error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("parse database url: %w", err)
		}
		if maxConns > 0 {
			poolCfg.MaxConns = maxConns
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}

		r := NewEntryRepo(pool)
		if err := r.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return r, pool.Close, nil

	case strings.HasPrefix(dsn, "file:"), strings.HasPrefix(dsn, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite:"), "file:")
		db, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteEntryRepo(db), func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported database url %q", dsn)
}

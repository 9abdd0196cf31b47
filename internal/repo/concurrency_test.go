package repo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/todomvc/internal/repo"
	"github.com/BuzzLyutic/todomvc/internal/testdb"
)

func testConcurrentCreateAndList(t *testing.T, r repo.EntryRepository) {
	ctx := context.Background()

	var wg sync.WaitGroup
	const creators = 5
	const perCreator = 5
	const readers = 5

	errs := make(chan error, creators*perCreator+readers*10)

	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < perCreator; j++ {
				if _, err := r.Create(ctx, fmt.Sprintf("Task %d-%d", idx, j)); err != nil {
					errs <- err
				}
			}
		}(i)
	}

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := r.List(ctx); err != nil {
					errs <- err
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, creators*perCreator)

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		assert.False(t, seen[e.ID.String()], "duplicate id %s", e.ID)
		seen[e.ID.String()] = true
	}
}

func TestConcurrent_CreateAndList_SQLite(t *testing.T) {
	testConcurrentCreateAndList(t, testdb.SetupSQLite(t))
}

func TestConcurrent_CreateAndList_Postgres(t *testing.T) {
	pool, cleanup := testdb.SetupPostgres(t)
	defer cleanup()
	testdb.TruncateTables(t, pool)

	testConcurrentCreateAndList(t, repo.NewEntryRepo(pool))
}

func TestConcurrent_MultipleReads(t *testing.T) {
	r := testdb.SetupSQLite(t)
	ids := testdb.SeedEntries(t, r, 10)
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			e, err := r.Get(ctx, ids[idx%len(ids)].ID)
			if err == nil && e == nil {
				err = fmt.Errorf("entry %s missing", ids[idx%len(ids)].ID)
			}
			results[idx] = err
		}(i)
	}
	wg.Wait()

	for i, err := range results {
		assert.NoError(t, err, "read %d", i)
	}
}

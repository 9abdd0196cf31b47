package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todomvc/internal/client"
	"github.com/BuzzLyutic/todomvc/internal/config"
	"github.com/BuzzLyutic/todomvc/internal/handler"
	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/repo"
	"github.com/BuzzLyutic/todomvc/internal/server"
	"github.com/BuzzLyutic/todomvc/internal/service"
	"github.com/BuzzLyutic/todomvc/internal/testdb"
)

func startServer(t *testing.T) (string, repo.EntryRepository) {
	t.Helper()
	r := testdb.SetupSQLite(t)
	h := handler.NewEntryHandler(service.NewEntryService(r), zap.NewNop())
	srv := httptest.NewServer(server.NewRouter(h, zap.NewNop(), server.Options{}))
	t.Cleanup(srv.Close)
	return srv.URL, r
}

// run executes one CLI invocation and returns its stdout.
func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(config.New())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", url}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_AddAndList(t *testing.T) {
	url, r := startServer(t)

	out, err := run(t, url, "add", "Buy", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, `"Buy milk"`)

	entries, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Buy milk", entries[0].Content)

	out, err = run(t, url, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "  0 [ ] Buy milk")
	assert.Contains(t, out, "1 item left (All)")
}

func TestCLI_DoneAndFilter(t *testing.T) {
	url, r := startServer(t)
	testdb.SeedEntries(t, r, 3)

	_, err := run(t, url, "done", "1")
	require.NoError(t, err)

	out, err := run(t, url, "--filter", "completed", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "  0 [x] Task 2")
	assert.NotContains(t, out, "Task 1")

	out, err = run(t, url, "done", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "already completed")

	// Index 1 among active tasks is Task 3.
	_, err = run(t, url, "--filter", "active", "rm", "1")
	require.NoError(t, err)

	entries, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEqual(t, "Task 3", e.Content)
	}
}

func TestCLI_Clear(t *testing.T) {
	url, r := startServer(t)
	ctx := context.Background()

	done := model.NewEntry("done")
	done.Completed = true
	require.NoError(t, r.Insert(ctx, done))
	require.NoError(t, r.Insert(ctx, model.NewEntry("open")))

	out, err := run(t, url, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared 1 completed")

	entries, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "open", entries[0].Content)
}

func TestCLI_Errors(t *testing.T) {
	url, _ := startServer(t)

	_, err := run(t, url, "rm", "0")
	assert.ErrorIs(t, err, client.ErrIndexOutOfRange)

	_, err = run(t, url, "rm", "first")
	assert.ErrorContains(t, err, "not a number")

	_, err = run(t, url, "add", "  ")
	assert.ErrorContains(t, err, "must not be empty")

	_, err = run(t, url, "--filter", "soon", "ls")
	assert.ErrorContains(t, err, "unknown filter")
}

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todomvc/internal/client"
	"github.com/BuzzLyutic/todomvc/internal/handler"
	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/service"
	"github.com/BuzzLyutic/todomvc/internal/testdb"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	r := testdb.SetupSQLite(t)
	h := handler.NewEntryHandler(service.NewEntryService(r), zap.NewNop())
	srv := httptest.NewServer(NewRouter(h, zap.NewNop(), opts))
	t.Cleanup(srv.Close)
	return srv
}

func statusCode(err error) int {
	var se *client.StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func TestRouter_Workflow(t *testing.T) {
	srv := newTestServer(t, Options{})
	c := client.NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	entries, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	milk, err := c.CreateTask(ctx, "Buy milk")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, milk.ID)
	assert.False(t, milk.Completed)

	dog, err := c.CreateTask(ctx, "Walk dog")
	require.NoError(t, err)

	milk.Completed = true
	require.NoError(t, c.UpdateTask(ctx, milk))

	got, err := c.GetTask(ctx, milk.ID)
	require.NoError(t, err)
	assert.Equal(t, milk, got)

	// Bulk update inserts the unknown entry and updates the known one.
	extra := model.NewEntry("Call mom")
	dog.Content = "Walk the dog"
	require.NoError(t, c.UpdateAll(ctx, []model.Entry{dog, extra}))

	entries, err = c.ListTasks(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.Entry{milk, dog, extra}, entries)

	require.NoError(t, c.RemoveTask(ctx, milk.ID))
	_, err = c.GetTask(ctx, milk.ID)
	assert.Equal(t, http.StatusNotFound, statusCode(err))
}

func TestRouter_Errors(t *testing.T) {
	srv := newTestServer(t, Options{})
	c := client.NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, "   ")
	assert.Equal(t, http.StatusBadRequest, statusCode(err))

	err = c.RemoveTask(ctx, uuid.New())
	assert.Equal(t, http.StatusNotFound, statusCode(err))
	assert.ErrorContains(t, err, "task table is empty")

	err = c.UpdateTask(ctx, model.NewEntry("ghost"))
	assert.Equal(t, http.StatusNotFound, statusCode(err))

	resp, err := http.Get(srv.URL + "/api/task/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestRouter_Static(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>todos</h1>"), 0o644))
	srv := newTestServer(t, Options{StaticDir: dir})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "todos")

	noRedirect := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err = noRedirect.Get(srv.URL + "/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "./", resp.Header.Get("Location"))

	// API routes still win over the file server.
	resp, err = http.Get(srv.URL + "/api/tasks")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_NoStaticByDefault(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, err := http.Get(srv.URL + "/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

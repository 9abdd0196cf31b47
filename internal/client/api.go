// Package client talks to the todo API and keeps the in-memory mirror of the
// task list that the terminal UI renders.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/pkg/respond"
)

// API is the set of server calls the Store pushes through.
type API interface {
	CreateTask(ctx context.Context, content string) (model.Entry, error)
	ListTasks(ctx context.Context) ([]model.Entry, error)
	GetTask(ctx context.Context, id uuid.UUID) (model.Entry, error)
	UpdateTask(ctx context.Context, e model.Entry) error
	UpdateAll(ctx context.Context, entries []model.Entry) error
	RemoveTask(ctx context.Context, id uuid.UUID) error
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("got status code %d (%s)", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("got status code %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL. A zero timeout means requests may
// hang indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateTask(ctx context.Context, content string) (model.Entry, error) {
	var e model.Entry
	err := c.do(ctx, http.MethodPost, "/api/task", model.TaskRequest{Content: content}, &e)
	return e, err
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Entry, error) {
	var entries []model.Entry
	err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &entries)
	return entries, err
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (model.Entry, error) {
	var e model.Entry
	err := c.do(ctx, http.MethodGet, "/api/task/"+id.String(), nil, &e)
	return e, err
}

func (c *Client) UpdateTask(ctx context.Context, e model.Entry) error {
	return c.do(ctx, http.MethodPut, "/api/task/"+e.ID.String(), e, nil)
}

func (c *Client) UpdateAll(ctx context.Context, entries []model.Entry) error {
	if entries == nil {
		entries = []model.Entry{}
	}
	return c.do(ctx, http.MethodPost, "/api/tasks", entries, nil)
}

func (c *Client) RemoveTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/task/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := msgpack.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", respond.ContentTypeMsgPack)
	req.Header.Set("Accept", respond.ContentTypeMsgPack)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.Header.Get("Content-Type"), data)}
	}

	if out == nil {
		return nil
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(contentType string, data []byte) string {
	var body map[string]string
	switch contentType {
	case respond.ContentTypeMsgPack:
		if msgpack.Unmarshal(data, &body) == nil {
			return body["error"]
		}
	case respond.ContentTypeJSON:
		if json.Unmarshal(data, &body) == nil {
			return body["error"]
		}
	}
	return string(bytes.TrimSpace(data))
}

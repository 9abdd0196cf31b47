package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/worker"
)

// Store wraps State with the server pushes each mutation needs. The mirror
// is changed first and the push is handed to the dispatcher; a failed push
// is logged and never rolled back.
type Store struct {
	mu     sync.Mutex
	state  State
	api    API
	pool   *worker.Pool
	logger *zap.Logger
}

type fetched []model.Entry

type created model.Entry

func NewStore(api API, pool *worker.Pool, logger *zap.Logger) *Store {
	return &Store{
		api:    api,
		pool:   pool,
		logger: logger,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Entries = append([]model.Entry(nil), s.state.Entries...)
	return st
}

// Results exposes the dispatcher's channel for callers that feed Handle.
func (s *Store) Results() <-chan worker.Result {
	return s.pool.Results()
}

// Busy reports whether the most recent push has not been handled yet.
func (s *Store) Busy() bool {
	return s.pool.Current() != nil
}

func (s *Store) SetValue(v string) {
	s.mu.Lock()
	s.state.Value = v
	s.mu.Unlock()
}

func (s *Store) SetEditValue(v string) {
	s.mu.Lock()
	s.state.EditValue = v
	s.mu.Unlock()
}

func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	s.state.SetFilter(f)
	s.mu.Unlock()
}

func (s *Store) Fetch() worker.Handle {
	return s.pool.Submit("fetch tasks", func(ctx context.Context) (any, error) {
		entries, err := s.api.ListTasks(ctx)
		if err != nil {
			return nil, err
		}
		return fetched(entries), nil
	})
}

// Add creates an entry from the trimmed Value. Value is cleared either way;
// ok is false when there was nothing to add.
func (s *Store) Add() (h worker.Handle, ok bool) {
	s.mu.Lock()
	content := strings.TrimSpace(s.state.Value)
	s.state.Value = ""
	s.mu.Unlock()

	if content == "" {
		return worker.Handle{}, false
	}
	return s.pool.Submit("create task", func(ctx context.Context) (any, error) {
		e, err := s.api.CreateTask(ctx, content)
		if err != nil {
			return nil, err
		}
		return created(e), nil
	}), true
}

func (s *Store) Remove(idx int) (worker.Handle, error) {
	s.mu.Lock()
	e, err := s.state.Remove(idx)
	s.mu.Unlock()
	if err != nil {
		return worker.Handle{}, err
	}
	return s.pushRemove(e), nil
}

func (s *Store) Toggle(idx int) (worker.Handle, error) {
	s.mu.Lock()
	e, err := s.state.Toggle(idx)
	s.mu.Unlock()
	if err != nil {
		return worker.Handle{}, err
	}
	return s.pushUpdate("toggle task", e), nil
}

func (s *Store) ToggleAll(value bool) worker.Handle {
	s.mu.Lock()
	s.state.ToggleAll(value)
	entries := append([]model.Entry(nil), s.state.Entries...)
	s.mu.Unlock()

	return s.pushAll("toggle all", entries)
}

// ToggleEdit flips edit mode on the entry at idx. Other entries that lose
// their editing marker are pushed along with it in one bulk update.
func (s *Store) ToggleEdit(idx int) (worker.Handle, error) {
	s.mu.Lock()
	wasEditing := make(map[uuid.UUID]bool)
	for _, e := range s.state.Entries {
		if e.Editing {
			wasEditing[e.ID] = true
		}
	}
	target, err := s.state.ToggleEdit(idx)
	var cleared []model.Entry
	if err == nil {
		for _, e := range s.state.Entries {
			if e.ID != target.ID && wasEditing[e.ID] && !e.Editing {
				cleared = append(cleared, e)
			}
		}
	}
	s.mu.Unlock()
	if err != nil {
		return worker.Handle{}, err
	}

	if len(cleared) == 0 {
		return s.pushUpdate("edit task", target), nil
	}
	return s.pushAll("edit task", append(cleared, target)), nil
}

// CompleteEdit commits the trimmed EditValue to the entry at idx and clears
// the buffer. An empty value removes the entry.
func (s *Store) CompleteEdit(idx int) (worker.Handle, error) {
	s.mu.Lock()
	content := strings.TrimSpace(s.state.EditValue)
	e, removed, err := s.state.CompleteEdit(idx, content)
	if err == nil {
		s.state.EditValue = ""
	}
	s.mu.Unlock()
	if err != nil {
		return worker.Handle{}, err
	}

	if removed {
		return s.pushRemove(e), nil
	}
	return s.pushUpdate("update task", e), nil
}

// ClearCompleted drops completed entries locally, then pushes the survivors
// in bulk and deletes each dropped entry on the server.
func (s *Store) ClearCompleted() worker.Handle {
	s.mu.Lock()
	removed := s.state.ClearCompleted()
	survivors := append([]model.Entry(nil), s.state.Entries...)
	s.mu.Unlock()

	return s.pool.Submit("clear completed", func(ctx context.Context) (any, error) {
		if err := s.api.UpdateAll(ctx, survivors); err != nil {
			return nil, err
		}
		for _, e := range removed {
			if err := s.api.RemoveTask(ctx, e.ID); err != nil {
				return nil, fmt.Errorf("remove %s: %w", e.ID, err)
			}
		}
		return nil, nil
	})
}

func (s *Store) pushUpdate(desc string, e model.Entry) worker.Handle {
	return s.pool.Submit(desc, func(ctx context.Context) (any, error) {
		return nil, s.api.UpdateTask(ctx, e)
	})
}

func (s *Store) pushAll(desc string, entries []model.Entry) worker.Handle {
	return s.pool.Submit(desc, func(ctx context.Context) (any, error) {
		return nil, s.api.UpdateAll(ctx, entries)
	})
}

func (s *Store) pushRemove(e model.Entry) worker.Handle {
	return s.pool.Submit("remove task", func(ctx context.Context) (any, error) {
		return nil, s.api.RemoveTask(ctx, e.ID)
	})
}

// Handle applies one dispatcher result to the mirror and returns the push
// error, if any. The current handle is cleared when r belongs to it.
func (s *Store) Handle(r worker.Result) error {
	s.pool.ClearIf(r.Handle.ID)

	if r.Err != nil {
		s.logger.Error("push failed",
			zap.Uint64("job", r.Handle.ID),
			zap.String("desc", r.Handle.Desc),
			zap.Error(r.Err),
		)
		return fmt.Errorf("%s: %w", r.Handle.Desc, r.Err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := r.Value.(type) {
	case fetched:
		s.state.Entries = []model.Entry(v)
		s.logger.Debug("tasks fetched", zap.Int("count", len(v)))
	case created:
		s.state.Entries = append(s.state.Entries, model.Entry(v))
		s.logger.Debug("task created", zap.Stringer("id", v.ID))
	}
	return nil
}

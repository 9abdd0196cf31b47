package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/todomvc/internal/model"
)

var (
	ErrorNotFound    = errors.New("not found")
	ErrorConflict    = errors.New("conflict")
	ErrorTableEmpty  = errors.New("task table is empty")
	ErrorAmbiguousID = errors.New("ambiguous id")
)

// EntryRepository определяет интерфейс для работы с записями
type EntryRepository interface {
	Create(ctx context.Context, content string) (model.Entry, error)
	Insert(ctx context.Context, e model.Entry) error
	List(ctx context.Context) ([]model.Entry, error)
	// Get returns nil, nil when no row has the id.
	Get(ctx context.Context, id uuid.UUID) (*model.Entry, error)
	Update(ctx context.Context, id uuid.UUID, e model.Entry) error
	UpdateAll(ctx context.Context, entries []model.Entry) error
	Remove(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

type EntryService struct {
	repo repo.EntryRepository
}

func NewEntryService(repo repo.EntryRepository) *EntryService {
	return &EntryService{repo: repo}
}

func (s *EntryService) Create(ctx context.Context, req model.TaskRequest) (model.Entry, error) {
	if err := s.validate(req.Content); err != nil { // Пустые задачи не создаем
		return model.Entry{}, err
	}
	return s.repo.Create(ctx, req.Content)
}

func (s *EntryService) List(ctx context.Context) ([]model.Entry, error) {
	return s.repo.List(ctx)
}

// Get returns repo.ErrorNotFound when the id is unknown.
func (s *EntryService) Get(ctx context.Context, id uuid.UUID) (model.Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Entry{}, err
	}
	if e == nil {
		return model.Entry{}, repo.ErrorNotFound
	}
	return *e, nil
}

// Update replaces the whole entry; the path id wins over the payload id.
func (s *EntryService) Update(ctx context.Context, id uuid.UUID, e model.Entry) error {
	e.ID = id
	return s.repo.Update(ctx, id, e)
}

func (s *EntryService) UpdateAll(ctx context.Context, entries []model.Entry) error {
	for _, e := range entries {
		if e.ID == uuid.Nil {
			return ErrValidation
		}
	}
	return s.repo.UpdateAll(ctx, entries)
}

func (s *EntryService) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.Remove(ctx, id)
}

func (s *EntryService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *EntryService) validate(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrValidation
	}
	return nil
}

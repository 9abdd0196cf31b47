package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/todomvc/internal/model"
	"github.com/BuzzLyutic/todomvc/internal/repo"
)

// MockEntryRepository - мок репозитория
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, content string) (model.Entry, error) {
	args := m.Called(ctx, content)
	return args.Get(0).(model.Entry), args.Error(1)
}

func (m *MockEntryRepository) Insert(ctx context.Context, e model.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEntryRepository) List(ctx context.Context) ([]model.Entry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Entry), args.Error(1)
}

func (m *MockEntryRepository) Get(ctx context.Context, id uuid.UUID) (*model.Entry, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*model.Entry)
	return e, args.Error(1)
}

func (m *MockEntryRepository) Update(ctx context.Context, id uuid.UUID, e model.Entry) error {
	args := m.Called(ctx, id, e)
	return args.Error(0)
}

func (m *MockEntryRepository) UpdateAll(ctx context.Context, entries []model.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockEntryRepository) Remove(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestEntryService_Create(t *testing.T) {
	created := model.NewEntry("Test Task")

	tests := []struct {
		name      string
		req       model.TaskRequest
		setupMock func(*MockEntryRepository)
		wantErr   error
	}{
		{
			name: "successful creation",
			req:  model.TaskRequest{Content: "Test Task"},
			setupMock: func(m *MockEntryRepository) {
				m.On("Create", mock.Anything, "Test Task").Return(created, nil)
			},
		},
		{
			name:      "validation error - empty content",
			req:       model.TaskRequest{Content: ""},
			setupMock: func(m *MockEntryRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "validation error - whitespace content",
			req:       model.TaskRequest{Content: "  \t "},
			setupMock: func(m *MockEntryRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name: "repository failure",
			req:  model.TaskRequest{Content: "Test Task"},
			setupMock: func(m *MockEntryRepository) {
				m.On("Create", mock.Anything, "Test Task").Return(model.Entry{}, errors.New("connection refused"))
			},
			wantErr: errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockEntryRepository)
			tt.setupMock(mockRepo)

			service := NewEntryService(mockRepo)
			result, err := service.Create(context.Background(), tt.req)

			switch {
			case errors.Is(tt.wantErr, ErrValidation):
				assert.ErrorIs(t, err, ErrValidation)
			case tt.wantErr != nil:
				assert.EqualError(t, err, tt.wantErr.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, created, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestEntryService_Get(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRepo.On("Get", mock.Anything, id).Return(&model.Entry{ID: id, Content: "x"}, nil)

		got, err := NewEntryService(mockRepo).Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("absent maps to not found", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)
		mockRepo.On("Get", mock.Anything, id).Return(nil, nil)

		_, err := NewEntryService(mockRepo).Get(context.Background(), id)
		assert.ErrorIs(t, err, repo.ErrorNotFound)
	})
}

func TestEntryService_Update(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockEntryRepository)
	mockRepo.On("Update", mock.Anything, id, mock.MatchedBy(func(e model.Entry) bool {
		return e.ID == id && e.Content == "Updated" && e.Completed
	})).Return(nil)

	service := NewEntryService(mockRepo)
	err := service.Update(context.Background(), id, model.Entry{
		ID:        uuid.New(),
		Content:   "Updated",
		Completed: true,
	})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestEntryService_UpdateAll(t *testing.T) {
	t.Run("passes entries through", func(t *testing.T) {
		entries := []model.Entry{model.NewEntry("a"), model.NewEntry("b")}
		mockRepo := new(MockEntryRepository)
		mockRepo.On("UpdateAll", mock.Anything, entries).Return(nil)

		require.NoError(t, NewEntryService(mockRepo).UpdateAll(context.Background(), entries))
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects nil id", func(t *testing.T) {
		mockRepo := new(MockEntryRepository)

		err := NewEntryService(mockRepo).UpdateAll(context.Background(), []model.Entry{{Content: "no id"}})
		assert.ErrorIs(t, err, ErrValidation)
		mockRepo.AssertNotCalled(t, "UpdateAll", mock.Anything, mock.Anything)
	})
}

func TestEntryService_Remove(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockEntryRepository)
	mockRepo.On("Remove", mock.Anything, id).Return(repo.ErrorTableEmpty)

	err := NewEntryService(mockRepo).Remove(context.Background(), id)
	assert.ErrorIs(t, err, repo.ErrorTableEmpty)
	mockRepo.AssertExpectations(t)
}

func TestEntryService_Validate(t *testing.T) {
	service := &EntryService{}

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "valid content", content: "Valid", wantErr: false},
		{name: "empty content", content: "", wantErr: true},
		{name: "whitespace content", content: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.validate(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

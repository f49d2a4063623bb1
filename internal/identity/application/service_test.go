package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yifanzh/studyclock/internal/identity/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *mockSettingsRepo) Save(ctx context.Context, settings *domain.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type mockSettingsCache struct {
	mock.Mock
}

func (m *mockSettingsCache) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *mockSettingsCache) Set(ctx context.Context, settings *domain.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *mockSettingsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_EnsureUser(t *testing.T) {
	userID := uuid.New()

	t.Run("returns the existing user untouched", func(t *testing.T) {
		users := new(mockUserRepo)
		service := NewService(users, new(mockSettingsRepo), nil, newTestLogger())
		ctx := context.Background()

		existing, err := domain.NewUser(userID, "考研人")
		require.NoError(t, err)
		users.On("FindByID", ctx, userID).Return(existing, nil)

		user, err := service.EnsureUser(ctx, userID, "考研人")

		require.NoError(t, err)
		assert.Equal(t, existing, user)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("creates the user on first run", func(t *testing.T) {
		users := new(mockUserRepo)
		service := NewService(users, new(mockSettingsRepo), nil, newTestLogger())
		ctx := context.Background()

		users.On("FindByID", ctx, userID).Return(nil, nil)
		users.On("Save", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.EnsureUser(ctx, userID, "考研人")

		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "考研人", user.Name)
		users.AssertExpectations(t)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		users := new(mockUserRepo)
		service := NewService(users, new(mockSettingsRepo), nil, newTestLogger())
		ctx := context.Background()

		users.On("FindByID", ctx, userID).Return(nil, nil)

		_, err := service.EnsureUser(ctx, userID, "  ")

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrValidation))
	})
}

func TestService_GetSettings(t *testing.T) {
	userID := uuid.New()

	t.Run("creates the default row on first access", func(t *testing.T) {
		settingsRepo := new(mockSettingsRepo)
		service := NewService(new(mockUserRepo), settingsRepo, nil, newTestLogger())
		ctx := context.Background()

		settingsRepo.On("FindByUserID", ctx, userID).Return(nil, nil)
		settingsRepo.On("Save", ctx, mock.AnythingOfType("*domain.Settings")).Return(nil)

		settings, err := service.GetSettings(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, 25, settings.FocusDuration)
		assert.Equal(t, 5, settings.BreakDuration)
		assert.Equal(t, 15, settings.LongBreakDuration)
		assert.Equal(t, 4, settings.PomodorosUntilLongBreak)
		settingsRepo.AssertExpectations(t)
	})

	t.Run("serves from cache without touching the database", func(t *testing.T) {
		settingsRepo := new(mockSettingsRepo)
		cache := new(mockSettingsCache)
		service := NewService(new(mockUserRepo), settingsRepo, cache, newTestLogger())
		ctx := context.Background()

		cached := domain.DefaultSettings(userID)
		cache.On("Get", ctx, userID).Return(cached, nil)

		settings, err := service.GetSettings(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, cached, settings)
		settingsRepo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
	})

	t.Run("a cache failure degrades to the database", func(t *testing.T) {
		settingsRepo := new(mockSettingsRepo)
		cache := new(mockSettingsCache)
		service := NewService(new(mockUserRepo), settingsRepo, cache, newTestLogger())
		ctx := context.Background()

		stored := domain.DefaultSettings(userID)
		cache.On("Get", ctx, userID).Return(nil, errors.New("connection refused"))
		settingsRepo.On("FindByUserID", ctx, userID).Return(stored, nil)
		cache.On("Set", ctx, stored).Return(errors.New("connection refused"))

		settings, err := service.GetSettings(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, stored, settings)
	})
}

func TestService_UpdateSettings(t *testing.T) {
	userID := uuid.New()

	intPtr := func(v int) *int { return &v }
	boolPtr := func(v bool) *bool { return &v }

	t.Run("patches only the provided fields", func(t *testing.T) {
		settingsRepo := new(mockSettingsRepo)
		service := NewService(new(mockUserRepo), settingsRepo, nil, newTestLogger())
		ctx := context.Background()

		stored := domain.DefaultSettings(userID)
		settingsRepo.On("FindByUserID", ctx, userID).Return(stored, nil)
		settingsRepo.On("Save", ctx, stored).Return(nil)

		settings, err := service.UpdateSettings(ctx, userID, domain.SettingsUpdate{
			FocusDuration:  intPtr(45),
			AutoStartBreak: boolPtr(true),
		})

		require.NoError(t, err)
		assert.Equal(t, 45, settings.FocusDuration)
		assert.True(t, settings.AutoStartBreak)
		// untouched fields keep their values
		assert.Equal(t, 5, settings.BreakDuration)
		assert.Equal(t, 4, settings.PomodorosUntilLongBreak)
	})

	t.Run("rejects an out-of-range patch", func(t *testing.T) {
		settingsRepo := new(mockSettingsRepo)
		service := NewService(new(mockUserRepo), settingsRepo, nil, newTestLogger())
		ctx := context.Background()

		stored := domain.DefaultSettings(userID)
		settingsRepo.On("FindByUserID", ctx, userID).Return(stored, nil)

		_, err := service.UpdateSettings(ctx, userID, domain.SettingsUpdate{
			FocusDuration: intPtr(240),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrValidation))
		settingsRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_ResetSettings(t *testing.T) {
	userID := uuid.New()

	t.Run("writes the defaults and refreshes the cache", func(t *testing.T) {
		settingsRepo := new(mockSettingsRepo)
		cache := new(mockSettingsCache)
		service := NewService(new(mockUserRepo), settingsRepo, cache, newTestLogger())
		ctx := context.Background()

		settingsRepo.On("Save", ctx, mock.AnythingOfType("*domain.Settings")).Return(nil)
		cache.On("Set", ctx, mock.AnythingOfType("*domain.Settings")).Return(nil)

		settings, err := service.ResetSettings(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, 25, settings.FocusDuration)
		assert.False(t, settings.AutoStartBreak)
		settingsRepo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
}

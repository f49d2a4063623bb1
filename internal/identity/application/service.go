// Package application provides the identity service: user bootstrap and
// the per-user settings singleton.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/identity/domain"
)

// SettingsCache is an optional read-through cache in front of the
// settings row. Cache failures degrade silently to the database.
type SettingsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)
	Set(ctx context.Context, settings *domain.Settings) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Service manages users and their settings.
type Service struct {
	users    domain.UserRepository
	settings domain.SettingsRepository
	cache    SettingsCache
	logger   *slog.Logger
}

// NewService creates an identity service. cache may be nil.
func NewService(users domain.UserRepository, settings domain.SettingsRepository, cache SettingsCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		settings: settings,
		cache:    cache,
		logger:   logger,
	}
}

// EnsureUser upserts the implicit user at startup.
func (s *Service) EnsureUser(ctx context.Context, id uuid.UUID, name string) (*domain.User, error) {
	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user, err := domain.NewUser(id, name)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "bootstrapped user", "user_id", id, "name", name)
	return user, nil
}

// GetSettings returns the user's settings, creating the default row on
// first access.
func (s *Service) GetSettings(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.DebugContext(ctx, "settings cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	settings, err := s.settings.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = domain.DefaultSettings(userID)
		if err := s.settings.Save(ctx, settings); err != nil {
			return nil, err
		}
	}

	s.cacheSet(ctx, settings)
	return settings, nil
}

// UpdateSettings applies a partial, range-validated update.
func (s *Service) UpdateSettings(ctx context.Context, userID uuid.UUID, update domain.SettingsUpdate) (*domain.Settings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := settings.Apply(update, time.Now()); err != nil {
		return nil, err
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, settings)
	return settings, nil
}

// ResetSettings replaces the row with the defaults.
func (s *Service) ResetSettings(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	settings := domain.DefaultSettings(userID)
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, settings)
	return settings, nil
}

func (s *Service) cacheSet(ctx context.Context, settings *domain.Settings) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, settings); err != nil {
		s.logger.DebugContext(ctx, "settings cache write failed", "error", err)
	}
}

package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Save upserts a user.
	Save(ctx context.Context, user *User) error

	// FindByID finds a user by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// SettingsRepository defines the interface for settings persistence.
type SettingsRepository interface {
	// FindByUserID returns the user's settings, or nil when none exist.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Settings, error)

	// Save upserts the settings row.
	Save(ctx context.Context, settings *Settings) error
}

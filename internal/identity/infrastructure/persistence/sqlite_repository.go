// Package persistence implements the user and settings repositories for
// both database backends.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/identity/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
)

// SQLiteUserRepository implements domain.UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLite user repository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) querier(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteQuerier(ctx, r.db)
}

// Save upserts a user.
func (r *SQLiteUserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.querier(ctx).ExecContext(ctx, query,
		user.ID.String(),
		user.Name,
		user.CreatedAt.Format(time.RFC3339),
		now,
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save user", err)
	}
	return nil
}

// FindByID finds a user by ID.
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, name, created_at FROM users WHERE id = ?`

	var idStr, createdAtStr string
	var user domain.User
	err := r.querier(ctx).QueryRowContext(ctx, query, id.String()).Scan(&idStr, &user.Name, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find user", err)
	}

	user.ID, _ = uuid.Parse(idStr)
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &user, nil
}

// SQLiteSettingsRepository implements domain.SettingsRepository using SQLite.
type SQLiteSettingsRepository struct {
	db *sql.DB
}

// NewSQLiteSettingsRepository creates a new SQLite settings repository.
func NewSQLiteSettingsRepository(db *sql.DB) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{db: db}
}

func (r *SQLiteSettingsRepository) querier(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteQuerier(ctx, r.db)
}

// FindByUserID returns the user's settings row, or nil when it does not
// exist yet.
func (r *SQLiteSettingsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	query := `
		SELECT user_id, focus_duration, break_duration, long_break_duration, pomodoros_until_long_break,
		       auto_start_break, auto_start_focus, sound_enabled, vibration_enabled, updated_at
		FROM user_settings
		WHERE user_id = ?
	`
	var s domain.Settings
	var userIDStr, updatedAtStr string
	var autoStartBreak, autoStartFocus, soundEnabled, vibrationEnabled int

	err := r.querier(ctx).QueryRowContext(ctx, query, userID.String()).Scan(
		&userIDStr,
		&s.FocusDuration,
		&s.BreakDuration,
		&s.LongBreakDuration,
		&s.PomodorosUntilLongBreak,
		&autoStartBreak,
		&autoStartFocus,
		&soundEnabled,
		&vibrationEnabled,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find settings", err)
	}

	s.UserID, _ = uuid.Parse(userIDStr)
	s.AutoStartBreak = autoStartBreak != 0
	s.AutoStartFocus = autoStartFocus != 0
	s.SoundEnabled = soundEnabled != 0
	s.VibrationEnabled = vibrationEnabled != 0
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &s, nil
}

// Save upserts the settings singleton.
func (r *SQLiteSettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, focus_duration, break_duration, long_break_duration, pomodoros_until_long_break,
		                           auto_start_break, auto_start_focus, sound_enabled, vibration_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			focus_duration = excluded.focus_duration,
			break_duration = excluded.break_duration,
			long_break_duration = excluded.long_break_duration,
			pomodoros_until_long_break = excluded.pomodoros_until_long_break,
			auto_start_break = excluded.auto_start_break,
			auto_start_focus = excluded.auto_start_focus,
			sound_enabled = excluded.sound_enabled,
			vibration_enabled = excluded.vibration_enabled,
			updated_at = excluded.updated_at
	`
	_, err := r.querier(ctx).ExecContext(ctx, query,
		settings.UserID.String(),
		settings.FocusDuration,
		settings.BreakDuration,
		settings.LongBreakDuration,
		settings.PomodorosUntilLongBreak,
		boolToInt(settings.AutoStartBreak),
		boolToInt(settings.AutoStartFocus),
		boolToInt(settings.SoundEnabled),
		boolToInt(settings.VibrationEnabled),
		settings.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save settings", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

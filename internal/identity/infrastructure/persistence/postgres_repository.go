package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yifanzh/studyclock/internal/identity/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL user repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func (r *PostgresUserRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// Save upserts a user.
func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
	`
	_, err := r.executor(ctx).Exec(ctx, query, user.ID, user.Name, user.CreatedAt, time.Now().UTC())
	if err != nil {
		return sharedDomain.Storagef("failed to save user", err)
	}
	return nil
}

// FindByID finds a user by ID.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, name, created_at FROM users WHERE id = $1`

	var user domain.User
	err := r.executor(ctx).QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find user", err)
	}
	return &user, nil
}

// PostgresSettingsRepository implements domain.SettingsRepository using
// PostgreSQL.
type PostgresSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSettingsRepository creates a new PostgreSQL settings repository.
func NewPostgresSettingsRepository(pool *pgxpool.Pool) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{pool: pool}
}

func (r *PostgresSettingsRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// FindByUserID returns the user's settings row, or nil when it does not
// exist yet.
func (r *PostgresSettingsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	query := `
		SELECT user_id, focus_duration, break_duration, long_break_duration, pomodoros_until_long_break,
		       auto_start_break, auto_start_focus, sound_enabled, vibration_enabled, updated_at
		FROM user_settings
		WHERE user_id = $1
	`
	var s domain.Settings
	err := r.executor(ctx).QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.FocusDuration,
		&s.BreakDuration,
		&s.LongBreakDuration,
		&s.PomodorosUntilLongBreak,
		&s.AutoStartBreak,
		&s.AutoStartFocus,
		&s.SoundEnabled,
		&s.VibrationEnabled,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find settings", err)
	}
	return &s, nil
}

// Save upserts the settings singleton.
func (r *PostgresSettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, focus_duration, break_duration, long_break_duration, pomodoros_until_long_break,
		                           auto_start_break, auto_start_focus, sound_enabled, vibration_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			focus_duration = EXCLUDED.focus_duration,
			break_duration = EXCLUDED.break_duration,
			long_break_duration = EXCLUDED.long_break_duration,
			pomodoros_until_long_break = EXCLUDED.pomodoros_until_long_break,
			auto_start_break = EXCLUDED.auto_start_break,
			auto_start_focus = EXCLUDED.auto_start_focus,
			sound_enabled = EXCLUDED.sound_enabled,
			vibration_enabled = EXCLUDED.vibration_enabled,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.executor(ctx).Exec(ctx, query,
		settings.UserID,
		settings.FocusDuration,
		settings.BreakDuration,
		settings.LongBreakDuration,
		settings.PomodorosUntilLongBreak,
		settings.AutoStartBreak,
		settings.AutoStartFocus,
		settings.SoundEnabled,
		settings.VibrationEnabled,
		settings.UpdatedAt,
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save settings", err)
	}
	return nil
}

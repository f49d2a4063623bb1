package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

const pgSessionColumns = `id, user_id, task_id, kind, status, duration_seconds, elapsed_seconds, started_at, ended_at, pause_count, paused_seconds, created_at, updated_at`

// PostgresRepository implements domain.Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL session repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// Save inserts a new session.
func (r *PostgresRepository) Save(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, task_id, kind, status, duration_seconds, elapsed_seconds, started_at, ended_at, pause_count, paused_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.executor(ctx).Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TaskID,
		string(session.Kind),
		string(session.Status),
		session.DurationSeconds,
		session.ElapsedSeconds,
		session.StartedAt,
		session.EndedAt,
		session.PauseCount,
		session.PausedSeconds,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save session", err)
	}
	return nil
}

// FindByID finds a session by its ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + pgSessionColumns + ` FROM sessions WHERE id = $1`
	session, err := scanPgSession(r.executor(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find session", err)
	}
	return session, nil
}

// FindActiveByUserID returns the user's RUNNING or PAUSED session.
func (r *PostgresRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT ` + pgSessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND status IN ('RUNNING', 'PAUSED')
		ORDER BY started_at DESC
		LIMIT 1
	`
	session, err := scanPgSession(r.executor(ctx).QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find active session", err)
	}
	return session, nil
}

// CancelActive cancels any RUNNING or PAUSED session of the user.
func (r *PostgresRepository) CancelActive(ctx context.Context, userID uuid.UUID, now time.Time) error {
	query := `
		UPDATE sessions
		SET status = 'CANCELLED', ended_at = $1, updated_at = $1
		WHERE user_id = $2 AND status IN ('RUNNING', 'PAUSED')
	`
	if _, err := r.executor(ctx).Exec(ctx, query, now, userID); err != nil {
		return sharedDomain.Storagef("failed to cancel active session", err)
	}
	return nil
}

// Pause transitions RUNNING → PAUSED.
func (r *PostgresRepository) Pause(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'PAUSED', pause_count = pause_count + 1, updated_at = $1
		WHERE id = $2 AND status = 'RUNNING'
	`
	return r.transition(ctx, id, query, now, id)
}

// Resume transitions PAUSED → RUNNING.
func (r *PostgresRepository) Resume(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'RUNNING', updated_at = $1
		WHERE id = $2 AND status = 'PAUSED'
	`
	return r.transition(ctx, id, query, now, id)
}

// ClaimEnded transitions an active session into a terminal status.
func (r *PostgresRepository) ClaimEnded(ctx context.Context, id uuid.UUID, status domain.Status, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET status = $1, ended_at = $2, updated_at = $2
		WHERE id = $3 AND status IN ('RUNNING', 'PAUSED')
	`
	return r.transition(ctx, id, query, string(status), now, id)
}

// RecordHeartbeat persists client-reported progress monotonically.
func (r *PostgresRepository) RecordHeartbeat(ctx context.Context, id uuid.UUID, status domain.Status, elapsedSeconds int, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET elapsed_seconds = GREATEST(elapsed_seconds, $1),
		    pause_count = pause_count + (CASE WHEN status = 'RUNNING' AND $2 = 'PAUSED' THEN 1 ELSE 0 END),
		    status = $2,
		    updated_at = $3
		WHERE id = $4 AND status IN ('RUNNING', 'PAUSED')
	`
	return r.transition(ctx, id, query, elapsedSeconds, string(status), now, id)
}

// FindHistory returns the user's terminal sessions, newest first.
func (r *PostgresRepository) FindHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Session, error) {
	query := `
		SELECT ` + pgSessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND status IN ('COMPLETED', 'CANCELLED')
		ORDER BY started_at DESC
		LIMIT $2
	`
	return r.findMany(ctx, query, userID, limit)
}

// FindSince returns sessions started at or after the given time.
func (r *PostgresRepository) FindSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.Session, error) {
	query := `
		SELECT ` + pgSessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND started_at >= $2
		ORDER BY started_at DESC
	`
	return r.findMany(ctx, query, userID, since)
}

func (r *PostgresRepository) transition(ctx context.Context, id uuid.UUID, query string, args ...any) (*domain.Session, error) {
	tag, err := r.executor(ctx).Exec(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to update session", err)
	}
	if tag.RowsAffected() == 0 {
		session, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, sharedDomain.NotFoundf("session %s not found", id)
		}
		return nil, sharedDomain.Statef("session %s is %s", id, session.Status)
	}
	return r.FindByID(ctx, id)
}

func (r *PostgresRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query sessions", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanPgSession(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan session", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanPgSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	var kind, status string

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.TaskID,
		&kind,
		&status,
		&s.DurationSeconds,
		&s.ElapsedSeconds,
		&s.StartedAt,
		&s.EndedAt,
		&s.PauseCount,
		&s.PausedSeconds,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Kind = domain.Kind(kind)
	s.Status = domain.Status(status)
	return &s, nil
}

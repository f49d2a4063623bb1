// Package persistence implements the session repository for both
// database backends. The lifecycle transitions are single conditional
// UPDATEs so concurrent callers race on the row, not in Go.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

const sqliteSessionColumns = `id, user_id, task_id, kind, status, duration_seconds, elapsed_seconds, started_at, ended_at, pause_count, paused_seconds, created_at, updated_at`

// SQLiteRepository implements domain.Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite session repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) querier(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteQuerier(ctx, r.db)
}

// Save inserts a new session.
func (r *SQLiteRepository) Save(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, task_id, kind, status, duration_seconds, elapsed_seconds, started_at, ended_at, pause_count, paused_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var taskID *string
	if session.TaskID != nil {
		s := session.TaskID.String()
		taskID = &s
	}
	_, err := r.querier(ctx).ExecContext(ctx, query,
		session.ID.String(),
		session.UserID.String(),
		taskID,
		string(session.Kind),
		string(session.Status),
		session.DurationSeconds,
		session.ElapsedSeconds,
		session.StartedAt.Format(time.RFC3339),
		nullTime(session.EndedAt),
		session.PauseCount,
		session.PausedSeconds,
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save session", err)
	}
	return nil
}

// FindByID finds a session by its ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sqliteSessionColumns + ` FROM sessions WHERE id = ?`
	session, err := scanSQLiteSession(r.querier(ctx).QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find session", err)
	}
	return session, nil
}

// FindActiveByUserID returns the user's RUNNING or PAUSED session.
func (r *SQLiteRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT ` + sqliteSessionColumns + `
		FROM sessions
		WHERE user_id = ? AND status IN ('RUNNING', 'PAUSED')
		ORDER BY started_at DESC
		LIMIT 1
	`
	session, err := scanSQLiteSession(r.querier(ctx).QueryRowContext(ctx, query, userID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find active session", err)
	}
	return session, nil
}

// CancelActive cancels any RUNNING or PAUSED session of the user.
func (r *SQLiteRepository) CancelActive(ctx context.Context, userID uuid.UUID, now time.Time) error {
	query := `
		UPDATE sessions
		SET status = 'CANCELLED', ended_at = ?, updated_at = ?
		WHERE user_id = ? AND status IN ('RUNNING', 'PAUSED')
	`
	ts := now.UTC().Format(time.RFC3339)
	if _, err := r.querier(ctx).ExecContext(ctx, query, ts, ts, userID.String()); err != nil {
		return sharedDomain.Storagef("failed to cancel active session", err)
	}
	return nil
}

// Pause transitions RUNNING → PAUSED.
func (r *SQLiteRepository) Pause(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'PAUSED', pause_count = pause_count + 1, updated_at = ?
		WHERE id = ? AND status = 'RUNNING'
	`
	return r.transition(ctx, id, query, now.UTC().Format(time.RFC3339), id.String())
}

// Resume transitions PAUSED → RUNNING.
func (r *SQLiteRepository) Resume(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET status = 'RUNNING', updated_at = ?
		WHERE id = ? AND status = 'PAUSED'
	`
	return r.transition(ctx, id, query, now.UTC().Format(time.RFC3339), id.String())
}

// ClaimEnded transitions an active session into a terminal status.
func (r *SQLiteRepository) ClaimEnded(ctx context.Context, id uuid.UUID, status domain.Status, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET status = ?, ended_at = ?, updated_at = ?
		WHERE id = ? AND status IN ('RUNNING', 'PAUSED')
	`
	ts := now.UTC().Format(time.RFC3339)
	return r.transition(ctx, id, query, string(status), ts, ts, id.String())
}

// RecordHeartbeat persists client-reported progress. Elapsed seconds
// only ever grow, and a RUNNING → PAUSED move bumps the pause counter
// inside the same statement.
func (r *SQLiteRepository) RecordHeartbeat(ctx context.Context, id uuid.UUID, status domain.Status, elapsedSeconds int, now time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET elapsed_seconds = MAX(elapsed_seconds, ?),
		    pause_count = pause_count + (CASE WHEN status = 'RUNNING' AND ? = 'PAUSED' THEN 1 ELSE 0 END),
		    status = ?,
		    updated_at = ?
		WHERE id = ? AND status IN ('RUNNING', 'PAUSED')
	`
	return r.transition(ctx, id, query,
		elapsedSeconds,
		string(status),
		string(status),
		now.UTC().Format(time.RFC3339),
		id.String(),
	)
}

// FindHistory returns the user's terminal sessions, newest first.
func (r *SQLiteRepository) FindHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Session, error) {
	query := `
		SELECT ` + sqliteSessionColumns + `
		FROM sessions
		WHERE user_id = ? AND status IN ('COMPLETED', 'CANCELLED')
		ORDER BY started_at DESC
		LIMIT ?
	`
	return r.findMany(ctx, query, userID.String(), limit)
}

// FindSince returns sessions started at or after the given time.
func (r *SQLiteRepository) FindSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.Session, error) {
	query := `
		SELECT ` + sqliteSessionColumns + `
		FROM sessions
		WHERE user_id = ? AND started_at >= ?
		ORDER BY started_at DESC
	`
	return r.findMany(ctx, query, userID.String(), since.UTC().Format(time.RFC3339))
}

// transition runs a conditional update and explains a miss: the row is
// either gone (ErrNotFound) or in a state the transition rejects
// (ErrState).
func (r *SQLiteRepository) transition(ctx context.Context, id uuid.UUID, query string, args ...any) (*domain.Session, error) {
	result, err := r.querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to update session", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, sharedDomain.Storagef("failed to update session", err)
	}
	if affected == 0 {
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

func (r *SQLiteRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query sessions", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan session", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	var idStr, userIDStr, kind, status, startedAtStr, createdAtStr, updatedAtStr string
	var taskIDStr, endedAtStr sql.NullString

	err := row.Scan(
		&idStr,
		&userIDStr,
		&taskIDStr,
		&kind,
		&status,
		&s.DurationSeconds,
		&s.ElapsedSeconds,
		&startedAtStr,
		&endedAtStr,
		&s.PauseCount,
		&s.PausedSeconds,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	s.ID, _ = uuid.Parse(idStr)
	s.UserID, _ = uuid.Parse(userIDStr)
	if taskIDStr.Valid {
		taskID, err := uuid.Parse(taskIDStr.String)
		if err == nil {
			s.TaskID = &taskID
		}
	}
	s.Kind = domain.Kind(kind)
	s.Status = domain.Status(status)
	s.StartedAt, _ = time.Parse(time.RFC3339, startedAtStr)
	if endedAtStr.Valid {
		endedAt, err := time.Parse(time.RFC3339, endedAtStr.String)
		if err == nil {
			s.EndedAt = &endedAt
		}
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &s, nil
}

func nullTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

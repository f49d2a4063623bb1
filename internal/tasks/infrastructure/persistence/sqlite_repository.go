// Package persistence implements the task repository for both database
// backends.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

const sqliteTaskColumns = `id, user_id, title, subject, estimated_pomodoros, completed_pomodoros, is_completed, is_active, created_at, completed_at`

// SQLiteRepository implements domain.Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite task repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) querier(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteQuerier(ctx, r.db)
}

// Save persists a task, inserting or replacing by primary key.
func (r *SQLiteRepository) Save(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, subject, estimated_pomodoros, completed_pomodoros, is_completed, is_active, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			subject = excluded.subject,
			estimated_pomodoros = excluded.estimated_pomodoros,
			completed_pomodoros = excluded.completed_pomodoros,
			is_completed = excluded.is_completed,
			is_active = excluded.is_active,
			completed_at = excluded.completed_at
	`
	_, err := r.querier(ctx).ExecContext(ctx, query,
		task.ID.String(),
		task.UserID.String(),
		task.Title,
		string(task.Subject),
		task.EstimatedPomodoros,
		task.CompletedPomodoros,
		boolToInt(task.IsCompleted),
		boolToInt(task.IsActive),
		task.CreatedAt.Format(time.RFC3339),
		nullTimeString(task.CompletedAt),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save task", err)
	}
	return nil
}

// FindByID finds a task by its ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks WHERE id = ?`
	task, err := scanSQLiteTask(r.querier(ctx).QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find task", err)
	}
	return task, nil
}

// FindByUserID returns all tasks, active first, incomplete before
// complete, newest first within each group.
func (r *SQLiteRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + sqliteTaskColumns + `
		FROM tasks
		WHERE user_id = ?
		ORDER BY is_active DESC, is_completed ASC, created_at DESC
	`
	return r.findMany(ctx, query, userID.String())
}

// FindBySubject returns a user's tasks for one subject, newest first.
func (r *SQLiteRepository) FindBySubject(ctx context.Context, userID uuid.UUID, subject domain.Subject) ([]*domain.Task, error) {
	query := `
		SELECT ` + sqliteTaskColumns + `
		FROM tasks
		WHERE user_id = ? AND subject = ?
		ORDER BY created_at DESC
	`
	return r.findMany(ctx, query, userID.String(), string(subject))
}

// DeactivateAll clears the active flag on every task of the user.
func (r *SQLiteRepository) DeactivateAll(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE tasks SET is_active = 0 WHERE user_id = ? AND is_active = 1`
	if _, err := r.querier(ctx).ExecContext(ctx, query, userID.String()); err != nil {
		return sharedDomain.Storagef("failed to deactivate tasks", err)
	}
	return nil
}

// Activate sets the active flag on one task.
func (r *SQLiteRepository) Activate(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE tasks SET is_active = 1 WHERE id = ? AND user_id = ?`
	result, err := r.querier(ctx).ExecContext(ctx, query, id.String(), userID.String())
	if err != nil {
		return sharedDomain.Storagef("failed to activate task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return sharedDomain.Storagef("failed to activate task", err)
	}
	if affected == 0 {
		return sharedDomain.NotFoundf("task %s not found", id)
	}
	return nil
}

// RecordFocusCompletion increments the completed counter and, when the
// estimate is reached, flips the completion flag. Two statements, both
// conditional, inside the caller's transaction.
func (r *SQLiteRepository) RecordFocusCompletion(ctx context.Context, id uuid.UUID, now time.Time) (domain.FocusCompletionResult, error) {
	q := r.querier(ctx)

	increment := `UPDATE tasks SET completed_pomodoros = completed_pomodoros + 1 WHERE id = ?`
	result, err := q.ExecContext(ctx, increment, id.String())
	if err != nil {
		return domain.FocusCompletionResult{}, sharedDomain.Storagef("failed to credit pomodoro", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return domain.FocusCompletionResult{}, sharedDomain.Storagef("failed to credit pomodoro", err)
	}
	if affected == 0 {
		return domain.FocusCompletionResult{Found: false}, nil
	}

	complete := `
		UPDATE tasks
		SET is_completed = 1, completed_at = ?
		WHERE id = ? AND is_completed = 0 AND completed_pomodoros >= estimated_pomodoros
	`
	result, err = q.ExecContext(ctx, complete, now.UTC().Format(time.RFC3339), id.String())
	if err != nil {
		return domain.FocusCompletionResult{}, sharedDomain.Storagef("failed to complete task", err)
	}
	completed, err := result.RowsAffected()
	if err != nil {
		return domain.FocusCompletionResult{}, sharedDomain.Storagef("failed to complete task", err)
	}
	return domain.FocusCompletionResult{Found: true, CompletedNow: completed > 0}, nil
}

// Delete removes a task.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = ?`
	if _, err := r.querier(ctx).ExecContext(ctx, query, id.String()); err != nil {
		return sharedDomain.Storagef("failed to delete task", err)
	}
	return nil
}

// StatsByUserID aggregates task counts per subject.
func (r *SQLiteRepository) StatsByUserID(ctx context.Context, userID uuid.UUID) (*domain.Stats, error) {
	query := `
		SELECT subject, COUNT(*), SUM(is_completed)
		FROM tasks
		WHERE user_id = ?
		GROUP BY subject
	`
	rows, err := r.querier(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, sharedDomain.Storagef("failed to aggregate tasks", err)
	}
	defer rows.Close()

	stats := &domain.Stats{BySubject: map[domain.Subject]int{}}
	for rows.Next() {
		var subject string
		var total, completed int
		if err := rows.Scan(&subject, &total, &completed); err != nil {
			return nil, sharedDomain.Storagef("failed to scan task stats", err)
		}
		stats.Total += total
		stats.Completed += completed
		stats.BySubject[domain.Subject(subject)] = total
	}
	stats.Active = stats.Total - stats.Completed
	return stats, rows.Err()
}

func (r *SQLiteRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query tasks", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var idStr, userIDStr, subject, createdAtStr string
	var isCompleted, isActive int
	var completedAtStr sql.NullString

	err := row.Scan(
		&idStr,
		&userIDStr,
		&t.Title,
		&subject,
		&t.EstimatedPomodoros,
		&t.CompletedPomodoros,
		&isCompleted,
		&isActive,
		&createdAtStr,
		&completedAtStr,
	)
	if err != nil {
		return nil, err
	}

	t.ID, _ = uuid.Parse(idStr)
	t.UserID, _ = uuid.Parse(userIDStr)
	t.Subject = domain.Subject(subject)
	t.IsCompleted = isCompleted != 0
	t.IsActive = isActive != 0
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	if completedAtStr.Valid {
		completedAt, err := time.Parse(time.RFC3339, completedAtStr.String)
		if err == nil {
			t.CompletedAt = &completedAt
		}
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTimeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

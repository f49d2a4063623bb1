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
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

const pgTaskColumns = `id, user_id, title, subject, estimated_pomodoros, completed_pomodoros, is_completed, is_active, created_at, completed_at`

// PostgresRepository implements domain.Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL task repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// Save persists a task, inserting or updating by primary key.
func (r *PostgresRepository) Save(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, subject, estimated_pomodoros, completed_pomodoros, is_completed, is_active, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			subject = EXCLUDED.subject,
			estimated_pomodoros = EXCLUDED.estimated_pomodoros,
			completed_pomodoros = EXCLUDED.completed_pomodoros,
			is_completed = EXCLUDED.is_completed,
			is_active = EXCLUDED.is_active,
			completed_at = EXCLUDED.completed_at
	`
	_, err := r.executor(ctx).Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		string(task.Subject),
		task.EstimatedPomodoros,
		task.CompletedPomodoros,
		task.IsCompleted,
		task.IsActive,
		task.CreatedAt,
		task.CompletedAt,
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save task", err)
	}
	return nil
}

// FindByID finds a task by its ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + pgTaskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanPgTask(r.executor(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find task", err)
	}
	return task, nil
}

// FindByUserID returns all tasks in display order.
func (r *PostgresRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + pgTaskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY is_active DESC, is_completed ASC, created_at DESC
	`
	return r.findMany(ctx, query, userID)
}

// FindBySubject returns a user's tasks for one subject, newest first.
func (r *PostgresRepository) FindBySubject(ctx context.Context, userID uuid.UUID, subject domain.Subject) ([]*domain.Task, error) {
	query := `
		SELECT ` + pgTaskColumns + `
		FROM tasks
		WHERE user_id = $1 AND subject = $2
		ORDER BY created_at DESC
	`
	return r.findMany(ctx, query, userID, string(subject))
}

// DeactivateAll clears the active flag on every task of the user.
func (r *PostgresRepository) DeactivateAll(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE tasks SET is_active = FALSE WHERE user_id = $1 AND is_active = TRUE`
	if _, err := r.executor(ctx).Exec(ctx, query, userID); err != nil {
		return sharedDomain.Storagef("failed to deactivate tasks", err)
	}
	return nil
}

// Activate sets the active flag on one task.
func (r *PostgresRepository) Activate(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE tasks SET is_active = TRUE WHERE id = $1 AND user_id = $2`
	tag, err := r.executor(ctx).Exec(ctx, query, id, userID)
	if err != nil {
		return sharedDomain.Storagef("failed to activate task", err)
	}
	if tag.RowsAffected() == 0 {
		return sharedDomain.NotFoundf("task %s not found", id)
	}
	return nil
}

// RecordFocusCompletion increments the completed counter and flips the
// completion flag when the estimate is reached.
func (r *PostgresRepository) RecordFocusCompletion(ctx context.Context, id uuid.UUID, now time.Time) (domain.FocusCompletionResult, error) {
	ex := r.executor(ctx)

	increment := `UPDATE tasks SET completed_pomodoros = completed_pomodoros + 1 WHERE id = $1`
	tag, err := ex.Exec(ctx, increment, id)
	if err != nil {
		return domain.FocusCompletionResult{}, sharedDomain.Storagef("failed to credit pomodoro", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.FocusCompletionResult{Found: false}, nil
	}

	complete := `
		UPDATE tasks
		SET is_completed = TRUE, completed_at = $1
		WHERE id = $2 AND is_completed = FALSE AND completed_pomodoros >= estimated_pomodoros
	`
	tag, err = ex.Exec(ctx, complete, now, id)
	if err != nil {
		return domain.FocusCompletionResult{}, sharedDomain.Storagef("failed to complete task", err)
	}
	return domain.FocusCompletionResult{Found: true, CompletedNow: tag.RowsAffected() > 0}, nil
}

// Delete removes a task.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`
	if _, err := r.executor(ctx).Exec(ctx, query, id); err != nil {
		return sharedDomain.Storagef("failed to delete task", err)
	}
	return nil
}

// StatsByUserID aggregates task counts per subject.
func (r *PostgresRepository) StatsByUserID(ctx context.Context, userID uuid.UUID) (*domain.Stats, error) {
	query := `
		SELECT subject, COUNT(*), COUNT(*) FILTER (WHERE is_completed)
		FROM tasks
		WHERE user_id = $1
		GROUP BY subject
	`
	rows, err := r.executor(ctx).Query(ctx, query, userID)
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

func (r *PostgresRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query tasks", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanPgTask(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanPgTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var subject string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&subject,
		&t.EstimatedPomodoros,
		&t.CompletedPomodoros,
		&t.IsCompleted,
		&t.IsActive,
		&t.CreatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Subject = domain.Subject(subject)
	return &t, nil
}

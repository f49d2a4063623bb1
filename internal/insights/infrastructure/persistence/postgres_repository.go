package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

const pgStatColumns = `id, user_id, date, total_pomodoros, total_focus_seconds, total_break_seconds, pomodoros_408, pomodoros_math, pomodoros_english, pomodoros_politics, completed_tasks, created_tasks, created_at`

// PostgresStatsRepository implements domain.Repository using PostgreSQL.
type PostgresStatsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStatsRepository creates a new PostgreSQL stats repository.
func NewPostgresStatsRepository(pool *pgxpool.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

func (r *PostgresStatsRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// ApplySessionCompletion rolls one completed session into the day's row.
func (r *PostgresStatsRepository) ApplySessionCompletion(ctx context.Context, userID uuid.UUID, date string, isFocus bool, elapsedSeconds int, subject *tasksDomain.Subject) error {
	focusSeconds, breakSeconds := 0, 0
	if isFocus {
		focusSeconds = elapsedSeconds
	} else {
		breakSeconds = elapsedSeconds
	}

	subjectInsert, subjectValues, subjectUpdate := "", "", ""
	if subject != nil {
		col := subjectColumn(*subject)
		subjectInsert = fmt.Sprintf(", %s", col)
		subjectValues = ", 1"
		subjectUpdate = fmt.Sprintf(", %s = daily_stats.%s + 1", col, col)
	}

	query := fmt.Sprintf(`
		INSERT INTO daily_stats (id, user_id, date, total_pomodoros, total_focus_seconds, total_break_seconds, created_at%s)
		VALUES ($1, $2, $3, 1, $4, $5, $6%s)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_pomodoros = daily_stats.total_pomodoros + 1,
			total_focus_seconds = daily_stats.total_focus_seconds + EXCLUDED.total_focus_seconds,
			total_break_seconds = daily_stats.total_break_seconds + EXCLUDED.total_break_seconds%s
	`, subjectInsert, subjectValues, subjectUpdate)

	_, err := r.executor(ctx).Exec(ctx, query,
		uuid.New(),
		userID,
		date,
		focusSeconds,
		breakSeconds,
		time.Now().UTC(),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to apply session completion", err)
	}
	return nil
}

// AddFocusSeconds adds manually logged study time to the day's total.
func (r *PostgresStatsRepository) AddFocusSeconds(ctx context.Context, userID uuid.UUID, date string, seconds int) error {
	query := `
		INSERT INTO daily_stats (id, user_id, date, total_focus_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_focus_seconds = daily_stats.total_focus_seconds + EXCLUDED.total_focus_seconds
	`
	_, err := r.executor(ctx).Exec(ctx, query, uuid.New(), userID, date, seconds, time.Now().UTC())
	if err != nil {
		return sharedDomain.Storagef("failed to add focus seconds", err)
	}
	return nil
}

// AddTaskCounters bumps the day's created/completed task counters.
func (r *PostgresStatsRepository) AddTaskCounters(ctx context.Context, userID uuid.UUID, date string, createdDelta, completedDelta int) error {
	query := `
		INSERT INTO daily_stats (id, user_id, date, created_tasks, completed_tasks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date) DO UPDATE SET
			created_tasks = daily_stats.created_tasks + EXCLUDED.created_tasks,
			completed_tasks = daily_stats.completed_tasks + EXCLUDED.completed_tasks
	`
	_, err := r.executor(ctx).Exec(ctx, query, uuid.New(), userID, date, createdDelta, completedDelta, time.Now().UTC())
	if err != nil {
		return sharedDomain.Storagef("failed to add task counters", err)
	}
	return nil
}

// FindByDate returns the day's row, or nil when nothing happened yet.
func (r *PostgresStatsRepository) FindByDate(ctx context.Context, userID uuid.UUID, date string) (*domain.DailyStat, error) {
	query := `SELECT ` + pgStatColumns + ` FROM daily_stats WHERE user_id = $1 AND date = $2`
	stat, err := scanPgStat(r.executor(ctx).QueryRow(ctx, query, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find daily stat", err)
	}
	return stat, nil
}

// FindRange returns rows in [from, to], oldest first.
func (r *PostgresStatsRepository) FindRange(ctx context.Context, userID uuid.UUID, from, to string) ([]*domain.DailyStat, error) {
	query := `
		SELECT ` + pgStatColumns + `
		FROM daily_stats
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := r.executor(ctx).Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query daily stats", err)
	}
	defer rows.Close()

	var stats []*domain.DailyStat
	for rows.Next() {
		stat, err := scanPgStat(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan daily stat", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func scanPgStat(row pgx.Row) (*domain.DailyStat, error) {
	var d domain.DailyStat
	var date time.Time

	err := row.Scan(
		&d.ID,
		&d.UserID,
		&date,
		&d.TotalPomodoros,
		&d.TotalFocusSeconds,
		&d.TotalBreakSeconds,
		&d.Pomodoros408,
		&d.PomodorosMath,
		&d.PomodorosEnglish,
		&d.PomodorosPolitics,
		&d.CompletedTasks,
		&d.CreatedTasks,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Date = date.Format(domain.DateLayout)
	return &d, nil
}

// PostgresRecordRepository implements domain.StudyRecordRepository using
// PostgreSQL.
type PostgresRecordRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRecordRepository creates a new PostgreSQL study record
// repository.
func NewPostgresRecordRepository(pool *pgxpool.Pool) *PostgresRecordRepository {
	return &PostgresRecordRepository{pool: pool}
}

func (r *PostgresRecordRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// Save inserts a record.
func (r *PostgresRecordRepository) Save(ctx context.Context, record *domain.StudyRecord) error {
	query := `
		INSERT INTO study_records (id, user_id, subject, duration_hours, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.executor(ctx).Exec(ctx, query,
		record.ID,
		record.UserID,
		string(record.Subject),
		record.DurationHours,
		record.Notes,
		record.CreatedAt,
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save study record", err)
	}
	return nil
}

// FindByID finds a record by its ID.
func (r *PostgresRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StudyRecord, error) {
	query := `SELECT id, user_id, subject, duration_hours, notes, created_at FROM study_records WHERE id = $1`
	record, err := scanPgRecord(r.executor(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find study record", err)
	}
	return record, nil
}

// FindByUserID returns records newest first, optionally filtered.
func (r *PostgresRecordRepository) FindByUserID(ctx context.Context, userID uuid.UUID, subject *tasksDomain.Subject, limit int) ([]*domain.StudyRecord, error) {
	query := `SELECT id, user_id, subject, duration_hours, notes, created_at FROM study_records WHERE user_id = $1`
	args := []any{userID}
	if subject != nil {
		query += fmt.Sprintf(` AND subject = $%d`, len(args)+1)
		args = append(args, string(*subject))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query study records", err)
	}
	defer rows.Close()

	var records []*domain.StudyRecord
	for rows.Next() {
		record, err := scanPgRecord(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan study record", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a record.
func (r *PostgresRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM study_records WHERE id = $1`
	if _, err := r.executor(ctx).Exec(ctx, query, id); err != nil {
		return sharedDomain.Storagef("failed to delete study record", err)
	}
	return nil
}

func scanPgRecord(row pgx.Row) (*domain.StudyRecord, error) {
	var rec domain.StudyRecord
	var subject string
	var notes *string

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&subject,
		&rec.DurationHours,
		&notes,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Subject = tasksDomain.Subject(subject)
	if notes != nil {
		rec.Notes = *notes
	}
	return &rec, nil
}

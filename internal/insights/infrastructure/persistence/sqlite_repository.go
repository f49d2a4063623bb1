// Package persistence implements the statistics rollup and study record
// repositories for both database backends. The rollup row is never read
// before writing: every mutation is a single upsert with additive
// increments, so concurrent completions cannot lose counts.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

const sqliteStatColumns = `id, user_id, date, total_pomodoros, total_focus_seconds, total_break_seconds, pomodoros_408, pomodoros_math, pomodoros_english, pomodoros_politics, completed_tasks, created_tasks, created_at`

// subjectColumn maps a subject to its counter column. The set is closed,
// so the column name never comes from user input.
func subjectColumn(subject tasksDomain.Subject) string {
	switch subject {
	case tasksDomain.SubjectComputer408:
		return "pomodoros_408"
	case tasksDomain.SubjectMath:
		return "pomodoros_math"
	case tasksDomain.SubjectEnglish:
		return "pomodoros_english"
	case tasksDomain.SubjectPolitics:
		return "pomodoros_politics"
	default:
		return ""
	}
}

// SQLiteStatsRepository implements domain.Repository using SQLite.
type SQLiteStatsRepository struct {
	db *sql.DB
}

// NewSQLiteStatsRepository creates a new SQLite stats repository.
func NewSQLiteStatsRepository(db *sql.DB) *SQLiteStatsRepository {
	return &SQLiteStatsRepository{db: db}
}

func (r *SQLiteStatsRepository) querier(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteQuerier(ctx, r.db)
}

// ApplySessionCompletion rolls one completed session into the day's row.
func (r *SQLiteStatsRepository) ApplySessionCompletion(ctx context.Context, userID uuid.UUID, date string, isFocus bool, elapsedSeconds int, subject *tasksDomain.Subject) error {
	focusSeconds, breakSeconds := 0, 0
	if isFocus {
		focusSeconds = elapsedSeconds
	} else {
		breakSeconds = elapsedSeconds
	}

	subjectInsert, subjectUpdate := "", ""
	if subject != nil {
		col := subjectColumn(*subject)
		subjectInsert = fmt.Sprintf(", %s", col)
		subjectUpdate = fmt.Sprintf(", %s = %s + 1", col, col)
	}

	query := fmt.Sprintf(`
		INSERT INTO daily_stats (id, user_id, date, total_pomodoros, total_focus_seconds, total_break_seconds, created_at%s)
		VALUES (?, ?, ?, 1, ?, ?, ?%s)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_pomodoros = total_pomodoros + 1,
			total_focus_seconds = total_focus_seconds + excluded.total_focus_seconds,
			total_break_seconds = total_break_seconds + excluded.total_break_seconds%s
	`, subjectInsert, subjectValue(subject), subjectUpdate)

	_, err := r.querier(ctx).ExecContext(ctx, query,
		uuid.New().String(),
		userID.String(),
		date,
		focusSeconds,
		breakSeconds,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to apply session completion", err)
	}
	return nil
}

// subjectValue returns the VALUES fragment for the optional subject
// counter column.
func subjectValue(subject *tasksDomain.Subject) string {
	if subject == nil {
		return ""
	}
	return ", 1"
}

// AddFocusSeconds adds manually logged study time to the day's total.
func (r *SQLiteStatsRepository) AddFocusSeconds(ctx context.Context, userID uuid.UUID, date string, seconds int) error {
	query := `
		INSERT INTO daily_stats (id, user_id, date, total_focus_seconds, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_focus_seconds = total_focus_seconds + excluded.total_focus_seconds
	`
	_, err := r.querier(ctx).ExecContext(ctx, query,
		uuid.New().String(),
		userID.String(),
		date,
		seconds,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to add focus seconds", err)
	}
	return nil
}

// AddTaskCounters bumps the day's created/completed task counters.
func (r *SQLiteStatsRepository) AddTaskCounters(ctx context.Context, userID uuid.UUID, date string, createdDelta, completedDelta int) error {
	query := `
		INSERT INTO daily_stats (id, user_id, date, created_tasks, completed_tasks, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			created_tasks = created_tasks + excluded.created_tasks,
			completed_tasks = completed_tasks + excluded.completed_tasks
	`
	_, err := r.querier(ctx).ExecContext(ctx, query,
		uuid.New().String(),
		userID.String(),
		date,
		createdDelta,
		completedDelta,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to add task counters", err)
	}
	return nil
}

// FindByDate returns the day's row, or nil when nothing happened yet.
func (r *SQLiteStatsRepository) FindByDate(ctx context.Context, userID uuid.UUID, date string) (*domain.DailyStat, error) {
	query := `SELECT ` + sqliteStatColumns + ` FROM daily_stats WHERE user_id = ? AND date = ?`
	stat, err := scanSQLiteStat(r.querier(ctx).QueryRowContext(ctx, query, userID.String(), date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find daily stat", err)
	}
	return stat, nil
}

// FindRange returns rows in [from, to], oldest first. Days without
// activity have no row.
func (r *SQLiteStatsRepository) FindRange(ctx context.Context, userID uuid.UUID, from, to string) ([]*domain.DailyStat, error) {
	query := `
		SELECT ` + sqliteStatColumns + `
		FROM daily_stats
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`
	rows, err := r.querier(ctx).QueryContext(ctx, query, userID.String(), from, to)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query daily stats", err)
	}
	defer rows.Close()

	var stats []*domain.DailyStat
	for rows.Next() {
		stat, err := scanSQLiteStat(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan daily stat", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteStat(row rowScanner) (*domain.DailyStat, error) {
	var d domain.DailyStat
	var idStr, userIDStr, createdAtStr string

	err := row.Scan(
		&idStr,
		&userIDStr,
		&d.Date,
		&d.TotalPomodoros,
		&d.TotalFocusSeconds,
		&d.TotalBreakSeconds,
		&d.Pomodoros408,
		&d.PomodorosMath,
		&d.PomodorosEnglish,
		&d.PomodorosPolitics,
		&d.CompletedTasks,
		&d.CreatedTasks,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	d.ID, _ = uuid.Parse(idStr)
	d.UserID, _ = uuid.Parse(userIDStr)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &d, nil
}

// SQLiteRecordRepository implements domain.StudyRecordRepository using SQLite.
type SQLiteRecordRepository struct {
	db *sql.DB
}

// NewSQLiteRecordRepository creates a new SQLite study record repository.
func NewSQLiteRecordRepository(db *sql.DB) *SQLiteRecordRepository {
	return &SQLiteRecordRepository{db: db}
}

func (r *SQLiteRecordRepository) querier(ctx context.Context) sharedPersistence.SQLiteExecutor {
	return sharedPersistence.SQLiteQuerier(ctx, r.db)
}

// Save inserts a record.
func (r *SQLiteRecordRepository) Save(ctx context.Context, record *domain.StudyRecord) error {
	query := `
		INSERT INTO study_records (id, user_id, subject, duration_hours, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.querier(ctx).ExecContext(ctx, query,
		record.ID.String(),
		record.UserID.String(),
		string(record.Subject),
		record.DurationHours,
		record.Notes,
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return sharedDomain.Storagef("failed to save study record", err)
	}
	return nil
}

// FindByID finds a record by its ID.
func (r *SQLiteRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StudyRecord, error) {
	query := `SELECT id, user_id, subject, duration_hours, notes, created_at FROM study_records WHERE id = ?`
	record, err := scanSQLiteRecord(r.querier(ctx).QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sharedDomain.Storagef("failed to find study record", err)
	}
	return record, nil
}

// FindByUserID returns records newest first, optionally filtered.
func (r *SQLiteRecordRepository) FindByUserID(ctx context.Context, userID uuid.UUID, subject *tasksDomain.Subject, limit int) ([]*domain.StudyRecord, error) {
	query := `SELECT id, user_id, subject, duration_hours, notes, created_at FROM study_records WHERE user_id = ?`
	args := []any{userID.String()}
	if subject != nil {
		query += ` AND subject = ?`
		args = append(args, string(*subject))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sharedDomain.Storagef("failed to query study records", err)
	}
	defer rows.Close()

	var records []*domain.StudyRecord
	for rows.Next() {
		record, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, sharedDomain.Storagef("failed to scan study record", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a record.
func (r *SQLiteRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM study_records WHERE id = ?`
	if _, err := r.querier(ctx).ExecContext(ctx, query, id.String()); err != nil {
		return sharedDomain.Storagef("failed to delete study record", err)
	}
	return nil
}

func scanSQLiteRecord(row rowScanner) (*domain.StudyRecord, error) {
	var rec domain.StudyRecord
	var idStr, userIDStr, subject, createdAtStr string
	var notes sql.NullString

	err := row.Scan(
		&idStr,
		&userIDStr,
		&subject,
		&rec.DurationHours,
		&notes,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	rec.ID, _ = uuid.Parse(idStr)
	rec.UserID, _ = uuid.Parse(userIDStr)
	rec.Subject = tasksDomain.Subject(subject)
	rec.Notes = notes.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &rec, nil
}

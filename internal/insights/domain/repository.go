package domain

import (
	"context"

	"github.com/google/uuid"

	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

// Repository defines the interface for daily stat persistence. All
// mutations are single-statement atomic upserts, never read-modify-write.
type Repository interface {
	// ApplySessionCompletion upserts the (user, date) row: the session
	// counter always goes up by one, elapsed seconds land in the focus
	// or break total, and a subject bucket is bumped when one applies.
	ApplySessionCompletion(ctx context.Context, userID uuid.UUID, date string, isFocus bool, elapsedSeconds int, subject *tasksDomain.Subject) error

	// AddFocusSeconds upserts the row and adds raw seconds to the focus
	// total. Used by manual study records.
	AddFocusSeconds(ctx context.Context, userID uuid.UUID, date string, seconds int) error

	// AddTaskCounters upserts the row and adjusts the created/completed
	// task counters.
	AddTaskCounters(ctx context.Context, userID uuid.UUID, date string, createdDelta, completedDelta int) error

	// FindByDate returns the row for one day, or nil when absent.
	FindByDate(ctx context.Context, userID uuid.UUID, date string) (*DailyStat, error)

	// FindRange returns rows with from ≤ date ≤ to, oldest first.
	FindRange(ctx context.Context, userID uuid.UUID, from, to string) ([]*DailyStat, error)
}

// StudyRecordRepository defines the interface for the manual study log.
type StudyRecordRepository interface {
	// Save inserts a record.
	Save(ctx context.Context, record *StudyRecord) error

	// FindByID finds a record by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*StudyRecord, error)

	// FindByUserID returns records newest first, optionally filtered by
	// subject. A limit of 0 means no limit.
	FindByUserID(ctx context.Context, userID uuid.UUID, subject *tasksDomain.Subject, limit int) ([]*StudyRecord, error)

	// Delete removes a record.
	Delete(ctx context.Context, id uuid.UUID) error
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FocusCompletionResult reports the outcome of recording a focus session
// against a task.
type FocusCompletionResult struct {
	// Found is false when the task no longer exists.
	Found bool
	// CompletedNow is true when this increment pushed the task over its
	// estimate and marked it complete.
	CompletedNow bool
}

// Stats summarizes a user's tasks.
type Stats struct {
	Total     int
	Completed int
	Active    int
	BySubject map[Subject]int
}

// Repository defines the interface for task persistence.
type Repository interface {
	// Save persists a task (create or update).
	Save(ctx context.Context, task *Task) error

	// FindByID finds a task by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// FindByUserID returns all tasks for a user, active first, then
	// incomplete before complete, newest first within each group.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Task, error)

	// FindBySubject returns a user's tasks for one subject, newest first.
	FindBySubject(ctx context.Context, userID uuid.UUID, subject Subject) ([]*Task, error)

	// DeactivateAll clears the active flag on every task of the user.
	DeactivateAll(ctx context.Context, userID uuid.UUID) error

	// Activate sets the active flag on one task. The caller is expected
	// to deactivate the rest first.
	Activate(ctx context.Context, userID, id uuid.UUID) error

	// RecordFocusCompletion atomically increments the completed counter
	// and marks the task complete when it reaches its estimate. A missing
	// task is reported through the result, not as an error.
	RecordFocusCompletion(ctx context.Context, id uuid.UUID, now time.Time) (FocusCompletionResult, error)

	// Delete removes a task. Historical session references to it are
	// left dangling.
	Delete(ctx context.Context, id uuid.UUID) error

	// StatsByUserID aggregates task counts per subject.
	StatsByUserID(ctx context.Context, userID uuid.UUID) (*Stats, error)
}

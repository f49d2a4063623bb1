package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

// SubjectResolver looks up the subject of a task. A deleted task
// resolves to nil without error so the stat update still lands in the
// type-level counters.
type SubjectResolver interface {
	SubjectOf(ctx context.Context, taskID uuid.UUID) (*tasksDomain.Subject, error)
}

// RecordSessionCompletionCommand carries the facts of a completed
// session that the daily rollup needs.
type RecordSessionCompletionCommand struct {
	UserID         uuid.UUID
	TaskID         *uuid.UUID
	IsFocus        bool
	ElapsedSeconds int
	CompletedAt    time.Time
}

// RecordSessionCompletionHandler applies a completed session to the
// day's aggregate row. It must run inside the caller's unit of work:
// a failure here rolls back the whole completion.
type RecordSessionCompletionHandler struct {
	statsRepo domain.Repository
	subjects  SubjectResolver
}

// NewRecordSessionCompletionHandler creates a new handler.
func NewRecordSessionCompletionHandler(statsRepo domain.Repository, subjects SubjectResolver) *RecordSessionCompletionHandler {
	return &RecordSessionCompletionHandler{
		statsRepo: statsRepo,
		subjects:  subjects,
	}
}

// Handle executes the RecordSessionCompletionCommand.
func (h *RecordSessionCompletionHandler) Handle(ctx context.Context, cmd RecordSessionCompletionCommand) error {
	// Subject buckets only apply to focus sessions with a live task.
	var subject *tasksDomain.Subject
	if cmd.IsFocus && cmd.TaskID != nil {
		s, err := h.subjects.SubjectOf(ctx, *cmd.TaskID)
		if err != nil {
			return err
		}
		subject = s
	}

	date := domain.DateOf(cmd.CompletedAt)
	return h.statsRepo.ApplySessionCompletion(ctx, cmd.UserID, date, cmd.IsFocus, cmd.ElapsedSeconds, subject)
}

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	insightsDomain "github.com/yifanzh/studyclock/internal/insights/domain"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// RecordFocusCompletionCommand credits a completed focus session to its
// task. It always runs inside the session-completion unit of work.
type RecordFocusCompletionCommand struct {
	UserID      uuid.UUID
	TaskID      uuid.UUID
	CompletedAt time.Time
}

// RecordFocusCompletionHandler handles the RecordFocusCompletionCommand.
//
// A task deleted while its session was running is a logged no-op: the
// session completion must not fail because of it. A storage failure is
// a real error and rolls back the enclosing transaction.
type RecordFocusCompletionHandler struct {
	taskRepo   domain.Repository
	statsRepo  insightsDomain.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewRecordFocusCompletionHandler creates a new handler.
func NewRecordFocusCompletionHandler(taskRepo domain.Repository, statsRepo insightsDomain.Repository, outboxRepo outbox.Repository, logger *slog.Logger) *RecordFocusCompletionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordFocusCompletionHandler{
		taskRepo:   taskRepo,
		statsRepo:  statsRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Handle executes the RecordFocusCompletionCommand.
func (h *RecordFocusCompletionHandler) Handle(ctx context.Context, cmd RecordFocusCompletionCommand) error {
	result, err := h.taskRepo.RecordFocusCompletion(ctx, cmd.TaskID, cmd.CompletedAt)
	if err != nil {
		return err
	}
	if !result.Found {
		h.logger.WarnContext(ctx, "task gone before focus completion, skipping progress update",
			"task_id", cmd.TaskID,
		)
		return nil
	}

	if !result.CompletedNow {
		return nil
	}

	// Reaching the estimate counts as a completed task for the day.
	date := insightsDomain.DateOf(cmd.CompletedAt)
	if err := h.statsRepo.AddTaskCounters(ctx, cmd.UserID, date, 0, 1); err != nil {
		return err
	}

	task, err := h.taskRepo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	msg, err := outbox.NewMessage(domain.NewTaskCompleted(task, cmd.CompletedAt))
	if err != nil {
		return err
	}
	return h.outboxRepo.Save(ctx, msg)
}

package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	insightsDomain "github.com/yifanzh/studyclock/internal/insights/domain"
	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// ToggleTaskCommand is the manual completion override. It sets the flag
// directly, independent of the pomodoro count, so a task can be marked
// done (or reopened) regardless of progress.
type ToggleTaskCommand struct {
	UserID      uuid.UUID
	TaskID      uuid.UUID
	IsCompleted bool
}

// ToggleTaskHandler handles the ToggleTaskCommand.
type ToggleTaskHandler struct {
	taskRepo   domain.Repository
	statsRepo  insightsDomain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewToggleTaskHandler creates a new ToggleTaskHandler.
func NewToggleTaskHandler(taskRepo domain.Repository, statsRepo insightsDomain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ToggleTaskHandler {
	return &ToggleTaskHandler{
		taskRepo:   taskRepo,
		statsRepo:  statsRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the ToggleTaskCommand.
func (h *ToggleTaskHandler) Handle(ctx context.Context, cmd ToggleTaskCommand) (*domain.Task, error) {
	var task *domain.Task

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t == nil || t.UserID != cmd.UserID {
			return sharedDomain.NotFoundf("task %s not found", cmd.TaskID)
		}

		now := time.Now()
		turnedComplete := cmd.IsCompleted && !t.IsCompleted
		t.SetCompleted(cmd.IsCompleted, now)
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		if turnedComplete {
			date := insightsDomain.DateOf(now)
			if err := h.statsRepo.AddTaskCounters(txCtx, cmd.UserID, date, 0, 1); err != nil {
				return err
			}
			msg, err := outbox.NewMessage(domain.NewTaskCompleted(t, now))
			if err != nil {
				return err
			}
			if err := h.outboxRepo.Save(txCtx, msg); err != nil {
				return err
			}
		}

		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

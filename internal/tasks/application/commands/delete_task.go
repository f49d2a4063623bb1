package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// DeleteTaskCommand hard-deletes a task. Sessions that referenced it
// keep their dangling task id; that is tolerated everywhere a task is
// resolved.
type DeleteTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo   domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteTaskHandler {
	return &DeleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t == nil || t.UserID != cmd.UserID {
			return sharedDomain.NotFoundf("task %s not found", cmd.TaskID)
		}

		if err := h.taskRepo.Delete(txCtx, cmd.TaskID); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(domain.NewTaskDeleted(cmd.UserID, cmd.TaskID))
		if err != nil {
			return err
		}
		return h.outboxRepo.Save(txCtx, msg)
	})
}

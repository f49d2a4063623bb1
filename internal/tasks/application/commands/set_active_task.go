package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// SetActiveTaskCommand marks one task as the active one.
type SetActiveTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

// SetActiveTaskHandler handles the SetActiveTaskCommand.
type SetActiveTaskHandler struct {
	taskRepo domain.Repository
	uow      sharedApplication.UnitOfWork
}

// NewSetActiveTaskHandler creates a new SetActiveTaskHandler.
func NewSetActiveTaskHandler(taskRepo domain.Repository, uow sharedApplication.UnitOfWork) *SetActiveTaskHandler {
	return &SetActiveTaskHandler{taskRepo: taskRepo, uow: uow}
}

// Handle executes the SetActiveTaskCommand.
func (h *SetActiveTaskHandler) Handle(ctx context.Context, cmd SetActiveTaskCommand) (*domain.Task, error) {
	var task *domain.Task

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.DeactivateAll(txCtx, cmd.UserID); err != nil {
			return err
		}
		if err := h.taskRepo.Activate(txCtx, cmd.UserID, cmd.TaskID); err != nil {
			return err
		}

		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

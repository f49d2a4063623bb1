package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	insightsDomain "github.com/yifanzh/studyclock/internal/insights/domain"
	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	UserID             uuid.UUID
	Title              string
	Subject            string
	EstimatedPomodoros int
}

// CreateTaskHandler handles the CreateTaskCommand. The new task always
// becomes the active one; any previously active task is deactivated in
// the same transaction.
type CreateTaskHandler struct {
	taskRepo   domain.Repository
	statsRepo  insightsDomain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo domain.Repository, statsRepo insightsDomain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		statsRepo:  statsRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*domain.Task, error) {
	subject, err := domain.ParseSubject(cmd.Subject)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(cmd.UserID, cmd.Title, subject, cmd.EstimatedPomodoros)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.DeactivateAll(txCtx, cmd.UserID); err != nil {
			return err
		}
		if err := h.taskRepo.Save(txCtx, task); err != nil {
			return err
		}

		date := insightsDomain.DateOf(time.Now())
		if err := h.statsRepo.AddTaskCounters(txCtx, cmd.UserID, date, 1, 0); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(domain.NewTaskCreated(task))
		if err != nil {
			return err
		}
		return h.outboxRepo.Save(txCtx, msg)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

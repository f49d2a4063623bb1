package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

func TestDeleteTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("deletes an owned task", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewDeleteTaskHandler(tasks, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		task, err := domain.NewTask(userID, "政治大题", domain.SubjectPolitics, 1)
		require.NoError(t, err)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		tasks.On("FindByID", txCtx, task.ID).Return(task, nil)
		tasks.On("Delete", txCtx, task.ID).Return(nil)
		outboxRepo.On("Save", txCtx, mock.AnythingOfType("*outbox.Message")).Return(nil)

		err = handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: task.ID})

		require.NoError(t, err)
		tasks.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("refuses to delete another user's task", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		handler := NewDeleteTaskHandler(tasks, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		task, err := domain.NewTask(uuid.New(), "政治大题", domain.SubjectPolitics, 1)
		require.NoError(t, err)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		tasks.On("FindByID", txCtx, task.ID).Return(task, nil)

		err = handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: task.ID})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrNotFound))
		tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("returns ErrNotFound for a missing task", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		handler := NewDeleteTaskHandler(tasks, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")
		taskID := uuid.New()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		tasks.On("FindByID", txCtx, taskID).Return(nil, nil)

		err := handler.Handle(ctx, DeleteTaskCommand{UserID: userID, TaskID: taskID})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrNotFound))
	})
}

func TestSetActiveTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("deactivates the rest before activating", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetActiveTaskHandler(tasks, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		task, err := domain.NewTask(userID, "高数错题", domain.SubjectMath, 2)
		require.NoError(t, err)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		tasks.On("DeactivateAll", txCtx, userID).Return(nil)
		tasks.On("Activate", txCtx, userID, task.ID).Return(nil)
		tasks.On("FindByID", txCtx, task.ID).Return(task, nil)

		result, err := handler.Handle(ctx, SetActiveTaskCommand{UserID: userID, TaskID: task.ID})

		require.NoError(t, err)
		assert.Equal(t, task.ID, result.ID)
		tasks.AssertExpectations(t)
	})

	t.Run("propagates ErrNotFound from activation", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		handler := NewSetActiveTaskHandler(tasks, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")
		taskID := uuid.New()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		tasks.On("DeactivateAll", txCtx, userID).Return(nil)
		tasks.On("Activate", txCtx, userID, taskID).
			Return(sharedDomain.NotFoundf("task %s not found", taskID))

		_, err := handler.Handle(ctx, SetActiveTaskCommand{UserID: userID, TaskID: taskID})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrNotFound))
	})
}

package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

func TestCreateTaskHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("creates the task as the new active one", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		stats := new(mockStatsRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCreateTaskHandler(tasks, stats, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		tasks.On("DeactivateAll", txCtx, userID).Return(nil)
		tasks.On("Save", txCtx, mock.AnythingOfType("*domain.Task")).Return(nil)
		stats.On("AddTaskCounters", txCtx, userID, mock.AnythingOfType("string"), 1, 0).Return(nil)
		outboxRepo.On("Save", txCtx, mock.AnythingOfType("*outbox.Message")).Return(nil)

		task, err := handler.Handle(ctx, CreateTaskCommand{
			UserID:             userID,
			Title:              "肖四选择题",
			Subject:            "POLITICS",
			EstimatedPomodoros: 3,
		})

		require.NoError(t, err)
		assert.True(t, task.IsActive)
		assert.False(t, task.IsCompleted)
		assert.Equal(t, domain.SubjectPolitics, task.Subject)
		assert.Equal(t, 3, task.EstimatedPomodoros)

		tasks.AssertExpectations(t)
		stats.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("rejects an unknown subject", func(t *testing.T) {
		handler := NewCreateTaskHandler(new(mockTaskRepo), new(mockStatsRepo), new(mockOutboxRepo), new(mockUnitOfWork))

		_, err := handler.Handle(context.Background(), CreateTaskCommand{
			UserID:             userID,
			Title:              "背单词",
			Subject:            "CHEMISTRY",
			EstimatedPomodoros: 2,
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrValidation))
	})

	t.Run("rejects a blank title", func(t *testing.T) {
		handler := NewCreateTaskHandler(new(mockTaskRepo), new(mockStatsRepo), new(mockOutboxRepo), new(mockUnitOfWork))

		_, err := handler.Handle(context.Background(), CreateTaskCommand{
			UserID:             userID,
			Title:              "   ",
			Subject:            "MATH",
			EstimatedPomodoros: 2,
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrValidation))
	})

	t.Run("rejects an overlong title", func(t *testing.T) {
		handler := NewCreateTaskHandler(new(mockTaskRepo), new(mockStatsRepo), new(mockOutboxRepo), new(mockUnitOfWork))

		_, err := handler.Handle(context.Background(), CreateTaskCommand{
			UserID:             userID,
			Title:              strings.Repeat("真", 201),
			Subject:            "MATH",
			EstimatedPomodoros: 2,
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sharedDomain.ErrValidation))
	})

	t.Run("rolls back when the counter update fails", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		stats := new(mockStatsRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCreateTaskHandler(tasks, stats, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		tasks.On("DeactivateAll", txCtx, userID).Return(nil)
		tasks.On("Save", txCtx, mock.AnythingOfType("*domain.Task")).Return(nil)
		stats.On("AddTaskCounters", txCtx, userID, mock.AnythingOfType("string"), 1, 0).Return(errors.New("locked"))

		_, err := handler.Handle(ctx, CreateTaskCommand{
			UserID:             userID,
			Title:              "线代讲义",
			Subject:            "MATH",
			EstimatedPomodoros: 2,
		})

		require.Error(t, err)
		outboxRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})
}

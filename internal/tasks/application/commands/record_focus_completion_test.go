package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

func TestRecordFocusCompletionHandler_Handle(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("credits the pomodoro without completing", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		stats := new(mockStatsRepo)
		outboxRepo := new(mockOutboxRepo)
		handler := NewRecordFocusCompletionHandler(tasks, stats, outboxRepo, logger)

		ctx := context.Background()
		now := time.Now()

		tasks.On("RecordFocusCompletion", ctx, taskID, now).
			Return(domain.FocusCompletionResult{Found: true, CompletedNow: false}, nil)

		err := handler.Handle(ctx, RecordFocusCompletionCommand{
			UserID:      userID,
			TaskID:      taskID,
			CompletedAt: now,
		})

		require.NoError(t, err)
		stats.AssertNotCalled(t, "AddTaskCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("reaching the estimate completes the task for the day", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		stats := new(mockStatsRepo)
		outboxRepo := new(mockOutboxRepo)
		handler := NewRecordFocusCompletionHandler(tasks, stats, outboxRepo, logger)

		ctx := context.Background()
		now := time.Now()

		task, err := domain.NewTask(userID, "数据结构", domain.SubjectComputer408, 2)
		require.NoError(t, err)
		task.ID = taskID
		task.CompletedPomodoros = 2
		task.IsCompleted = true

		tasks.On("RecordFocusCompletion", ctx, taskID, now).
			Return(domain.FocusCompletionResult{Found: true, CompletedNow: true}, nil)
		stats.On("AddTaskCounters", ctx, userID, mock.AnythingOfType("string"), 0, 1).Return(nil)
		tasks.On("FindByID", ctx, taskID).Return(task, nil)
		outboxRepo.On("Save", ctx, mock.AnythingOfType("*outbox.Message")).Return(nil)

		err = handler.Handle(ctx, RecordFocusCompletionCommand{
			UserID:      userID,
			TaskID:      taskID,
			CompletedAt: now,
		})

		require.NoError(t, err)
		tasks.AssertExpectations(t)
		stats.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("a vanished task is a logged no-op", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		stats := new(mockStatsRepo)
		outboxRepo := new(mockOutboxRepo)
		handler := NewRecordFocusCompletionHandler(tasks, stats, outboxRepo, logger)

		ctx := context.Background()
		now := time.Now()

		tasks.On("RecordFocusCompletion", ctx, taskID, now).
			Return(domain.FocusCompletionResult{Found: false}, nil)

		err := handler.Handle(ctx, RecordFocusCompletionCommand{
			UserID:      userID,
			TaskID:      taskID,
			CompletedAt: now,
		})

		require.NoError(t, err)
		stats.AssertNotCalled(t, "AddTaskCounters", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a storage failure propagates", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		handler := NewRecordFocusCompletionHandler(tasks, new(mockStatsRepo), new(mockOutboxRepo), logger)

		ctx := context.Background()
		now := time.Now()

		tasks.On("RecordFocusCompletion", ctx, taskID, now).
			Return(domain.FocusCompletionResult{}, errors.New("connection reset"))

		err := handler.Handle(ctx, RecordFocusCompletionCommand{
			UserID:      userID,
			TaskID:      taskID,
			CompletedAt: now,
		})

		require.Error(t, err)
	})
}

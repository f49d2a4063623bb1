package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// ListTasksQuery asks for a user's tasks, optionally filtered by subject.
type ListTasksQuery struct {
	UserID  uuid.UUID
	Subject string // optional
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo domain.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo domain.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, q ListTasksQuery) ([]*domain.Task, error) {
	if q.Subject != "" {
		subject, err := domain.ParseSubject(q.Subject)
		if err != nil {
			return nil, err
		}
		return h.taskRepo.FindBySubject(ctx, q.UserID, subject)
	}
	return h.taskRepo.FindByUserID(ctx, q.UserID)
}

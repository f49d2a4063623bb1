package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// GetTaskStatsQuery asks for per-subject task counts.
type GetTaskStatsQuery struct {
	UserID uuid.UUID
}

// GetTaskStatsHandler handles the GetTaskStatsQuery.
type GetTaskStatsHandler struct {
	taskRepo domain.Repository
}

// NewGetTaskStatsHandler creates a new GetTaskStatsHandler.
func NewGetTaskStatsHandler(taskRepo domain.Repository) *GetTaskStatsHandler {
	return &GetTaskStatsHandler{taskRepo: taskRepo}
}

// Handle executes the GetTaskStatsQuery.
func (h *GetTaskStatsHandler) Handle(ctx context.Context, q GetTaskStatsQuery) (*domain.Stats, error) {
	return h.taskRepo.StatsByUserID(ctx, q.UserID)
}

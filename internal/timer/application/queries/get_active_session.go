package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// GetActiveSessionQuery asks for the user's RUNNING or PAUSED session.
type GetActiveSessionQuery struct {
	UserID uuid.UUID
}

// GetActiveSessionHandler handles the GetActiveSessionQuery.
type GetActiveSessionHandler struct {
	sessionRepo domain.Repository
}

// NewGetActiveSessionHandler creates a new GetActiveSessionHandler.
func NewGetActiveSessionHandler(sessionRepo domain.Repository) *GetActiveSessionHandler {
	return &GetActiveSessionHandler{sessionRepo: sessionRepo}
}

// Handle executes the GetActiveSessionQuery. No active session is not
// an error; the result is nil.
func (h *GetActiveSessionHandler) Handle(ctx context.Context, q GetActiveSessionQuery) (*domain.Session, error) {
	return h.sessionRepo.FindActiveByUserID(ctx, q.UserID)
}

package queries

import (
	"context"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// GetSessionHistoryQuery asks for past (terminal) sessions, newest first.
type GetSessionHistoryQuery struct {
	UserID uuid.UUID
	Limit  int
}

// GetSessionHistoryHandler handles the GetSessionHistoryQuery.
type GetSessionHistoryHandler struct {
	sessionRepo domain.Repository
}

// NewGetSessionHistoryHandler creates a new GetSessionHistoryHandler.
func NewGetSessionHistoryHandler(sessionRepo domain.Repository) *GetSessionHistoryHandler {
	return &GetSessionHistoryHandler{sessionRepo: sessionRepo}
}

// Handle executes the GetSessionHistoryQuery.
func (h *GetSessionHistoryHandler) Handle(ctx context.Context, q GetSessionHistoryQuery) ([]*domain.Session, error) {
	limit := q.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit < 1 || limit > maxHistoryLimit {
		return nil, sharedDomain.Validationf("limit must be between 1 and %d", maxHistoryLimit)
	}
	return h.sessionRepo.FindHistory(ctx, q.UserID, limit)
}

package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// PauseSessionCommand pauses a running session.
type PauseSessionCommand struct {
	SessionID uuid.UUID
}

// PauseSessionHandler handles the PauseSessionCommand. The transition
// is a single conditional update; a session that is missing or not
// RUNNING surfaces as ErrNotFound / ErrState.
type PauseSessionHandler struct {
	sessionRepo domain.Repository
}

// NewPauseSessionHandler creates a new PauseSessionHandler.
func NewPauseSessionHandler(sessionRepo domain.Repository) *PauseSessionHandler {
	return &PauseSessionHandler{sessionRepo: sessionRepo}
}

// Handle executes the PauseSessionCommand.
func (h *PauseSessionHandler) Handle(ctx context.Context, cmd PauseSessionCommand) (*domain.Session, error) {
	return h.sessionRepo.Pause(ctx, cmd.SessionID, time.Now())
}

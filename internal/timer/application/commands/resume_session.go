package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// ResumeSessionCommand resumes a paused session.
type ResumeSessionCommand struct {
	SessionID uuid.UUID
}

// ResumeSessionHandler handles the ResumeSessionCommand.
type ResumeSessionHandler struct {
	sessionRepo domain.Repository
}

// NewResumeSessionHandler creates a new ResumeSessionHandler.
func NewResumeSessionHandler(sessionRepo domain.Repository) *ResumeSessionHandler {
	return &ResumeSessionHandler{sessionRepo: sessionRepo}
}

// Handle executes the ResumeSessionCommand.
func (h *ResumeSessionHandler) Handle(ctx context.Context, cmd ResumeSessionCommand) (*domain.Session, error) {
	return h.sessionRepo.Resume(ctx, cmd.SessionID, time.Now())
}

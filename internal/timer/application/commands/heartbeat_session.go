package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

// HeartbeatSessionCommand is the polling client's periodic progress
// write. It persists elapsed time for crash resilience; it can move a
// session between RUNNING and PAUSED but never into a terminal state;
// those transitions go through Complete/Cancel so side effects are
// never skipped.
type HeartbeatSessionCommand struct {
	SessionID      uuid.UUID
	Status         string
	ElapsedSeconds int
}

// HeartbeatSessionHandler handles the HeartbeatSessionCommand. A
// heartbeat that reaches the planned duration completes the session.
type HeartbeatSessionHandler struct {
	sessionRepo domain.Repository
	complete    *CompleteSessionHandler
}

// NewHeartbeatSessionHandler creates a new HeartbeatSessionHandler.
func NewHeartbeatSessionHandler(sessionRepo domain.Repository, complete *CompleteSessionHandler) *HeartbeatSessionHandler {
	return &HeartbeatSessionHandler{
		sessionRepo: sessionRepo,
		complete:    complete,
	}
}

// Handle executes the HeartbeatSessionCommand.
func (h *HeartbeatSessionHandler) Handle(ctx context.Context, cmd HeartbeatSessionCommand) (*domain.Session, error) {
	session, err := h.sessionRepo.FindByID(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, sharedDomain.NotFoundf("session %s not found", cmd.SessionID)
	}

	now := time.Now()
	autoComplete, err := session.ApplyHeartbeat(domain.Status(cmd.Status), cmd.ElapsedSeconds, now)
	if err != nil {
		return nil, err
	}

	// Persist the (clamped, monotone) progress first so the elapsed
	// time is durable even if the auto-complete below loses a race.
	updated, err := h.sessionRepo.RecordHeartbeat(ctx, cmd.SessionID, session.Status, session.ElapsedSeconds, now)
	if err != nil {
		return nil, err
	}

	if autoComplete {
		return h.complete.Handle(ctx, CompleteSessionCommand{SessionID: cmd.SessionID})
	}
	return updated, nil
}

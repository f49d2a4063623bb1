package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for session persistence.
//
// The transition methods are compare-and-swap at the row level: the
// status predicate is part of the UPDATE, so two concurrent callers
// cannot both win the same transition. Losing callers receive
// ErrNotFound (row gone) or ErrState (row in the wrong state).
type Repository interface {
	// Save inserts a new session.
	Save(ctx context.Context, session *Session) error

	// FindByID finds a session by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// FindActiveByUserID returns the user's RUNNING or PAUSED session,
	// or nil when there is none.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*Session, error)

	// CancelActive cancels any RUNNING or PAUSED session of the user,
	// stamping EndedAt. Used by Start for the implicit cancellation.
	CancelActive(ctx context.Context, userID uuid.UUID, now time.Time) error

	// Pause transitions RUNNING → PAUSED and bumps the pause counter.
	Pause(ctx context.Context, id uuid.UUID, now time.Time) (*Session, error)

	// Resume transitions PAUSED → RUNNING.
	Resume(ctx context.Context, id uuid.UUID, now time.Time) (*Session, error)

	// ClaimEnded transitions an active session to the given terminal
	// status and stamps EndedAt. Exactly one concurrent caller wins.
	ClaimEnded(ctx context.Context, id uuid.UUID, status Status, now time.Time) (*Session, error)

	// RecordHeartbeat persists client-reported progress on an active
	// session. Elapsed time is written monotonically; a RUNNING → PAUSED
	// heartbeat bumps the pause counter in the same statement.
	RecordHeartbeat(ctx context.Context, id uuid.UUID, status Status, elapsedSeconds int, now time.Time) (*Session, error)

	// FindHistory returns the user's terminal sessions, newest first.
	FindHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*Session, error)

	// FindSince returns sessions started at or after the given time,
	// newest first. Feeds the session statistics queries.
	FindSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*Session, error)
}

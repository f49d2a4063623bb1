package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

const (
	minDurationMinutes = 1
	maxDurationMinutes = 120
)

// Kind distinguishes focus intervals from the two break lengths.
type Kind string

const (
	KindFocus     Kind = "FOCUS"
	KindBreak     Kind = "BREAK"
	KindLongBreak Kind = "LONG_BREAK"
)

// ParseKind converts a raw string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFocus, KindBreak, KindLongBreak:
		return Kind(s), nil
	default:
		return "", sharedDomain.Validationf("unknown session kind %q", s)
	}
}

// Status is the session lifecycle state.
//
// RUNNING ⇄ PAUSED, both → COMPLETED | CANCELLED. The terminal states
// are immutable.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Session represents one timed study or break interval.
type Session struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	TaskID          *uuid.UUID
	Kind            Kind
	Status          Status
	DurationSeconds int
	ElapsedSeconds  int
	StartedAt       time.Time
	EndedAt         *time.Time
	PauseCount      int
	// PausedSeconds is reported by the client, never derived from
	// pause/resume timestamps. Known limitation carried from the product.
	PausedSeconds int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSession creates a RUNNING session with zero elapsed time.
func NewSession(userID uuid.UUID, taskID *uuid.UUID, kind Kind, durationMinutes int) (*Session, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if durationMinutes < minDurationMinutes || durationMinutes > maxDurationMinutes {
		return nil, sharedDomain.Validationf("duration must be between %d and %d minutes", minDurationMinutes, maxDurationMinutes)
	}

	now := time.Now().UTC()
	return &Session{
		ID:              uuid.New(),
		UserID:          userID,
		TaskID:          taskID,
		Kind:            kind,
		Status:          StatusRunning,
		DurationSeconds: durationMinutes * 60,
		StartedAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsActive reports whether the session is RUNNING or PAUSED.
func (s *Session) IsActive() bool {
	return s.Status == StatusRunning || s.Status == StatusPaused
}

// IsFocus reports whether completing the session counts study time.
func (s *Session) IsFocus() bool {
	return s.Kind == KindFocus
}

// Pause transitions RUNNING → PAUSED and bumps the pause counter.
func (s *Session) Pause(now time.Time) error {
	if s.Status != StatusRunning {
		return s.wrongState(StatusPaused)
	}
	s.Status = StatusPaused
	s.PauseCount++
	s.UpdatedAt = now.UTC()
	return nil
}

// Resume transitions PAUSED → RUNNING.
func (s *Session) Resume(now time.Time) error {
	if s.Status != StatusPaused {
		return s.wrongState(StatusRunning)
	}
	s.Status = StatusRunning
	s.UpdatedAt = now.UTC()
	return nil
}

// Complete transitions an active session to COMPLETED and stamps EndedAt.
func (s *Session) Complete(now time.Time) error {
	if !s.IsActive() {
		return s.wrongState(StatusCompleted)
	}
	at := now.UTC()
	s.Status = StatusCompleted
	s.EndedAt = &at
	s.UpdatedAt = at
	return nil
}

// Cancel transitions an active session to CANCELLED and stamps EndedAt.
// Cancelled time is never counted.
func (s *Session) Cancel(now time.Time) error {
	if !s.IsActive() {
		return s.wrongState(StatusCancelled)
	}
	at := now.UTC()
	s.Status = StatusCancelled
	s.EndedAt = &at
	s.UpdatedAt = at
	return nil
}

// ApplyHeartbeat records client-reported progress. Only RUNNING and
// PAUSED are accepted target statuses; terminal transitions must go
// through Complete/Cancel so their side effects are never skipped.
// Elapsed time is monotone and clamped to the planned duration; the
// returned flag tells the caller the session should now auto-complete.
func (s *Session) ApplyHeartbeat(status Status, elapsedSeconds int, now time.Time) (autoComplete bool, err error) {
	if status != StatusRunning && status != StatusPaused {
		return false, sharedDomain.Validationf("heartbeat status must be RUNNING or PAUSED, got %q", string(status))
	}
	if elapsedSeconds < 0 {
		return false, sharedDomain.Validationf("elapsed seconds cannot be negative")
	}
	if s.Status.IsTerminal() {
		return false, s.wrongState(status)
	}

	if elapsedSeconds > s.DurationSeconds {
		elapsedSeconds = s.DurationSeconds
	}
	if elapsedSeconds > s.ElapsedSeconds {
		s.ElapsedSeconds = elapsedSeconds
	}
	if s.Status == StatusRunning && status == StatusPaused {
		s.PauseCount++
	}
	s.Status = status
	s.UpdatedAt = now.UTC()

	return s.ElapsedSeconds >= s.DurationSeconds, nil
}

func (s *Session) wrongState(target Status) error {
	return sharedDomain.Statef("session %s is %s, cannot transition to %s", s.ID, s.Status, target)
}

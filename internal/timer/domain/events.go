package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

const aggregateType = "Session"

// SessionStarted is emitted when a session starts.
type SessionStarted struct {
	sharedDomain.BaseEvent
	SessionID       uuid.UUID  `json:"session_id"`
	TaskID          *uuid.UUID `json:"task_id,omitempty"`
	Kind            string     `json:"kind"`
	DurationSeconds int        `json:"duration_seconds"`
}

// NewSessionStarted creates a SessionStarted event.
func NewSessionStarted(s *Session) *SessionStarted {
	return &SessionStarted{
		BaseEvent:       sharedDomain.NewBaseEvent(s.UserID, s.ID, aggregateType, "timer.session.started"),
		SessionID:       s.ID,
		TaskID:          s.TaskID,
		Kind:            string(s.Kind),
		DurationSeconds: s.DurationSeconds,
	}
}

// SessionCompleted is emitted when a session completes.
type SessionCompleted struct {
	sharedDomain.BaseEvent
	SessionID      uuid.UUID  `json:"session_id"`
	TaskID         *uuid.UUID `json:"task_id,omitempty"`
	Kind           string     `json:"kind"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	EndedAt        time.Time  `json:"ended_at"`
}

// NewSessionCompleted creates a SessionCompleted event.
func NewSessionCompleted(s *Session) *SessionCompleted {
	endedAt := s.UpdatedAt
	if s.EndedAt != nil {
		endedAt = *s.EndedAt
	}
	return &SessionCompleted{
		BaseEvent:      sharedDomain.NewBaseEvent(s.UserID, s.ID, aggregateType, "timer.session.completed"),
		SessionID:      s.ID,
		TaskID:         s.TaskID,
		Kind:           string(s.Kind),
		ElapsedSeconds: s.ElapsedSeconds,
		EndedAt:        endedAt,
	}
}

// SessionCancelled is emitted when a session is cancelled, whether by
// the user or implicitly by starting a new one.
type SessionCancelled struct {
	sharedDomain.BaseEvent
	SessionID      uuid.UUID `json:"session_id"`
	Kind           string    `json:"kind"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
}

// NewSessionCancelled creates a SessionCancelled event.
func NewSessionCancelled(s *Session) *SessionCancelled {
	return &SessionCancelled{
		BaseEvent:      sharedDomain.NewBaseEvent(s.UserID, s.ID, aggregateType, "timer.session.cancelled"),
		SessionID:      s.ID,
		Kind:           string(s.Kind),
		ElapsedSeconds: s.ElapsedSeconds,
	}
}

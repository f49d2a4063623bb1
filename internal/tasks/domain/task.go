package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

const (
	maxTitleLength = 200
	minEstimate    = 1
	maxEstimate    = 20
)

// Task is a unit of study work. At most one task per user is active
// at any time.
type Task struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Title              string
	Subject            Subject
	EstimatedPomodoros int
	CompletedPomodoros int
	IsCompleted        bool
	IsActive           bool
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// NewTask creates a new task. An estimate of 0 defaults to 1.
func NewTask(userID uuid.UUID, title string, subject Subject, estimatedPomodoros int) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, sharedDomain.Validationf("task title cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, sharedDomain.Validationf("task title exceeds %d characters", maxTitleLength)
	}
	if !subject.IsValid() {
		return nil, sharedDomain.Validationf("unknown subject %q", string(subject))
	}
	if estimatedPomodoros == 0 {
		estimatedPomodoros = minEstimate
	}
	if estimatedPomodoros < minEstimate || estimatedPomodoros > maxEstimate {
		return nil, sharedDomain.Validationf("estimated pomodoros must be between %d and %d", minEstimate, maxEstimate)
	}

	return &Task{
		ID:                 uuid.New(),
		UserID:             userID,
		Title:              title,
		Subject:            subject,
		EstimatedPomodoros: estimatedPomodoros,
		IsActive:           true,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

// SetCompleted applies the manual completion override. Turning a task
// complete stamps CompletedAt; turning it back clears the stamp but
// leaves CompletedPomodoros untouched.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.IsCompleted = completed
	if completed {
		at := now.UTC()
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
}

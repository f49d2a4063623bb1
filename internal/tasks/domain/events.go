package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

const aggregateType = "Task"

// TaskCreated is emitted when a task is created.
type TaskCreated struct {
	sharedDomain.BaseEvent
	TaskID             uuid.UUID `json:"task_id"`
	Title              string    `json:"title"`
	Subject            string    `json:"subject"`
	EstimatedPomodoros int       `json:"estimated_pomodoros"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(t *Task) *TaskCreated {
	return &TaskCreated{
		BaseEvent:          sharedDomain.NewBaseEvent(t.UserID, t.ID, aggregateType, "tasks.task.created"),
		TaskID:             t.ID,
		Title:              t.Title,
		Subject:            string(t.Subject),
		EstimatedPomodoros: t.EstimatedPomodoros,
	}
}

// TaskCompleted is emitted when a task reaches its estimate or is
// manually marked complete.
type TaskCompleted struct {
	sharedDomain.BaseEvent
	TaskID             uuid.UUID `json:"task_id"`
	CompletedPomodoros int       `json:"completed_pomodoros"`
	CompletedAt        time.Time `json:"completed_at"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(t *Task, completedAt time.Time) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent:          sharedDomain.NewBaseEvent(t.UserID, t.ID, aggregateType, "tasks.task.completed"),
		TaskID:             t.ID,
		CompletedPomodoros: t.CompletedPomodoros,
		CompletedAt:        completedAt,
	}
}

// TaskDeleted is emitted when a task is removed.
type TaskDeleted struct {
	sharedDomain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(userID, taskID uuid.UUID) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(userID, taskID, aggregateType, "tasks.task.deleted"),
		TaskID:    taskID,
	}
}

package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/tasks/domain"
)

// SubjectResolver answers "which subject does this task belong to" for
// the statistics rollup. A missing task resolves to nil, not an error,
// so a session finishing after its task was deleted still counts.
type SubjectResolver struct {
	taskRepo domain.Repository
}

// NewSubjectResolver creates a SubjectResolver.
func NewSubjectResolver(taskRepo domain.Repository) *SubjectResolver {
	return &SubjectResolver{taskRepo: taskRepo}
}

// SubjectOf returns the task's subject, or nil when the task is gone.
func (r *SubjectResolver) SubjectOf(ctx context.Context, taskID uuid.UUID) (*domain.Subject, error) {
	task, err := r.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}
	subject := task.Subject
	return &subject, nil
}

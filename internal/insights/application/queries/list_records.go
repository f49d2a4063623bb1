package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

const (
	defaultRecordLimit = 50
	maxRecordLimit     = 500
)

// ListRecordsQuery asks for the manual study log, newest first.
type ListRecordsQuery struct {
	UserID  uuid.UUID
	Subject string // optional filter
	Limit   int
}

// ListRecordsHandler handles the ListRecordsQuery.
type ListRecordsHandler struct {
	recordRepo domain.StudyRecordRepository
}

// NewListRecordsHandler creates a new ListRecordsHandler.
func NewListRecordsHandler(recordRepo domain.StudyRecordRepository) *ListRecordsHandler {
	return &ListRecordsHandler{recordRepo: recordRepo}
}

// Handle executes the ListRecordsQuery.
func (h *ListRecordsHandler) Handle(ctx context.Context, q ListRecordsQuery) ([]*domain.StudyRecord, error) {
	limit := q.Limit
	if limit == 0 {
		limit = defaultRecordLimit
	}
	if limit < 1 || limit > maxRecordLimit {
		return nil, sharedDomain.Validationf("limit must be between 1 and %d", maxRecordLimit)
	}

	var subject *tasksDomain.Subject
	if q.Subject != "" {
		s, err := tasksDomain.ParseSubject(q.Subject)
		if err != nil {
			return nil, err
		}
		subject = &s
	}

	return h.recordRepo.FindByUserID(ctx, q.UserID, subject, limit)
}

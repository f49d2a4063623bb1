package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	sharedApplication "github.com/yifanzh/studyclock/internal/shared/application"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

// CreateRecordCommand contains the data to log study time manually.
type CreateRecordCommand struct {
	UserID        uuid.UUID
	Subject       string
	DurationHours float64
	Notes         string
}

// CreateRecordHandler handles the CreateRecordCommand. The record and
// its rollup into the day's focus total commit together.
type CreateRecordHandler struct {
	recordRepo domain.StudyRecordRepository
	statsRepo  domain.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateRecordHandler creates a new CreateRecordHandler.
func NewCreateRecordHandler(recordRepo domain.StudyRecordRepository, statsRepo domain.Repository, uow sharedApplication.UnitOfWork) *CreateRecordHandler {
	return &CreateRecordHandler{
		recordRepo: recordRepo,
		statsRepo:  statsRepo,
		uow:        uow,
	}
}

// Handle executes the CreateRecordCommand.
func (h *CreateRecordHandler) Handle(ctx context.Context, cmd CreateRecordCommand) (*domain.StudyRecord, error) {
	subject, err := tasksDomain.ParseSubject(cmd.Subject)
	if err != nil {
		return nil, err
	}

	record, err := domain.NewStudyRecord(cmd.UserID, subject, cmd.DurationHours, cmd.Notes)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.recordRepo.Save(txCtx, record); err != nil {
			return err
		}
		date := domain.DateOf(time.Now())
		return h.statsRepo.AddFocusSeconds(txCtx, cmd.UserID, date, record.Seconds())
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

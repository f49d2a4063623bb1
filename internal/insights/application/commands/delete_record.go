package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

// DeleteRecordCommand removes a manual study record.
//
// Deletion does not unwind the day's rollup; the hours stay counted,
// matching how the product behaves.
type DeleteRecordCommand struct {
	UserID   uuid.UUID
	RecordID uuid.UUID
}

// DeleteRecordHandler handles the DeleteRecordCommand.
type DeleteRecordHandler struct {
	recordRepo domain.StudyRecordRepository
}

// NewDeleteRecordHandler creates a new DeleteRecordHandler.
func NewDeleteRecordHandler(recordRepo domain.StudyRecordRepository) *DeleteRecordHandler {
	return &DeleteRecordHandler{recordRepo: recordRepo}
}

// Handle executes the DeleteRecordCommand.
func (h *DeleteRecordHandler) Handle(ctx context.Context, cmd DeleteRecordCommand) error {
	record, err := h.recordRepo.FindByID(ctx, cmd.RecordID)
	if err != nil {
		return err
	}
	if record == nil || record.UserID != cmd.UserID {
		return sharedDomain.NotFoundf("study record %s not found", cmd.RecordID)
	}
	return h.recordRepo.Delete(ctx, cmd.RecordID)
}

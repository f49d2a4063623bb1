package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

const (
	minRecordHours = 0.1
	maxRecordHours = 24
	maxNotesLength = 500
)

// StudyRecord is a manually logged block of study time, outside any
// timed session. Its hours roll into the day's focus total.
type StudyRecord struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Subject       tasksDomain.Subject
	DurationHours float64
	Notes         string
	CreatedAt     time.Time
}

// NewStudyRecord creates a study record.
func NewStudyRecord(userID uuid.UUID, subject tasksDomain.Subject, durationHours float64, notes string) (*StudyRecord, error) {
	if !subject.IsValid() {
		return nil, sharedDomain.Validationf("unknown subject %q", string(subject))
	}
	if durationHours < minRecordHours || durationHours > maxRecordHours {
		return nil, sharedDomain.Validationf("duration must be between %.1f and %d hours", minRecordHours, maxRecordHours)
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return nil, sharedDomain.Validationf("notes exceed %d characters", maxNotesLength)
	}

	return &StudyRecord{
		ID:            uuid.New(),
		UserID:        userID,
		Subject:       subject,
		DurationHours: durationHours,
		Notes:         notes,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Seconds converts the logged hours into whole seconds for the rollup.
func (r *StudyRecord) Seconds() int {
	return int(math.Round(r.DurationHours * 3600))
}

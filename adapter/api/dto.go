package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/yifanzh/studyclock/internal/identity/domain"
	insightsDomain "github.com/yifanzh/studyclock/internal/insights/domain"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
	timerDomain "github.com/yifanzh/studyclock/internal/timer/domain"
)

// SessionDTO is the wire shape of a session.
type SessionDTO struct {
	ID              string  `json:"id"`
	TaskID          *string `json:"taskId"`
	Kind            string  `json:"kind"`
	Status          string  `json:"status"`
	DurationSeconds int     `json:"durationSeconds"`
	ElapsedSeconds  int     `json:"elapsedSeconds"`
	StartedAt       string  `json:"startedAt"`
	EndedAt         *string `json:"endedAt"`
	PauseCount      int     `json:"pauseCount"`
	PausedSeconds   int     `json:"pausedSeconds"`
}

func toSessionDTO(s *timerDomain.Session) *SessionDTO {
	if s == nil {
		return nil
	}
	dto := &SessionDTO{
		ID:              s.ID.String(),
		Kind:            string(s.Kind),
		Status:          string(s.Status),
		DurationSeconds: s.DurationSeconds,
		ElapsedSeconds:  s.ElapsedSeconds,
		StartedAt:       s.StartedAt.UTC().Format(time.RFC3339),
		PauseCount:      s.PauseCount,
		PausedSeconds:   s.PausedSeconds,
	}
	if s.TaskID != nil {
		id := s.TaskID.String()
		dto.TaskID = &id
	}
	if s.EndedAt != nil {
		t := s.EndedAt.UTC().Format(time.RFC3339)
		dto.EndedAt = &t
	}
	return dto
}

func toSessionDTOs(sessions []*timerDomain.Session) []*SessionDTO {
	dtos := make([]*SessionDTO, len(sessions))
	for i, s := range sessions {
		dtos[i] = toSessionDTO(s)
	}
	return dtos
}

// TaskDTO is the wire shape of a task.
type TaskDTO struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Subject            string  `json:"subject"`
	SubjectName        string  `json:"subjectName"`
	EstimatedPomodoros int     `json:"estimatedPomodoros"`
	CompletedPomodoros int     `json:"completedPomodoros"`
	IsCompleted        bool    `json:"isCompleted"`
	IsActive           bool    `json:"isActive"`
	CompletedAt        *string `json:"completedAt"`
	CreatedAt          string  `json:"createdAt"`
}

func toTaskDTO(t *tasksDomain.Task) *TaskDTO {
	if t == nil {
		return nil
	}
	dto := &TaskDTO{
		ID:                 t.ID.String(),
		Title:              t.Title,
		Subject:            string(t.Subject),
		SubjectName:        t.Subject.Name(),
		EstimatedPomodoros: t.EstimatedPomodoros,
		CompletedPomodoros: t.CompletedPomodoros,
		IsCompleted:        t.IsCompleted,
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		completed := t.CompletedAt.UTC().Format(time.RFC3339)
		dto.CompletedAt = &completed
	}
	return dto
}

func toTaskDTOs(tasks []*tasksDomain.Task) []*TaskDTO {
	dtos := make([]*TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t)
	}
	return dtos
}

// SettingsDTO is the wire shape of user settings.
type SettingsDTO struct {
	FocusDuration           int  `json:"focusDuration"`
	BreakDuration           int  `json:"breakDuration"`
	LongBreakDuration       int  `json:"longBreakDuration"`
	PomodorosUntilLongBreak int  `json:"pomodorosUntilLongBreak"`
	AutoStartBreak          bool `json:"autoStartBreak"`
	AutoStartFocus          bool `json:"autoStartFocus"`
	SoundEnabled            bool `json:"soundEnabled"`
	VibrationEnabled        bool `json:"vibrationEnabled"`
}

func toSettingsDTO(s *identityDomain.Settings) *SettingsDTO {
	if s == nil {
		return nil
	}
	return &SettingsDTO{
		FocusDuration:           s.FocusDuration,
		BreakDuration:           s.BreakDuration,
		LongBreakDuration:       s.LongBreakDuration,
		PomodorosUntilLongBreak: s.PomodorosUntilLongBreak,
		AutoStartBreak:          s.AutoStartBreak,
		AutoStartFocus:          s.AutoStartFocus,
		SoundEnabled:            s.SoundEnabled,
		VibrationEnabled:        s.VibrationEnabled,
	}
}

// RecordDTO is the wire shape of a manual study record.
type RecordDTO struct {
	ID            string  `json:"id"`
	Subject       string  `json:"subject"`
	SubjectName   string  `json:"subjectName"`
	DurationHours float64 `json:"durationHours"`
	Notes         string  `json:"notes"`
	CreatedAt     string  `json:"createdAt"`
}

func toRecordDTO(r *insightsDomain.StudyRecord) *RecordDTO {
	if r == nil {
		return nil
	}
	return &RecordDTO{
		ID:            r.ID.String(),
		Subject:       string(r.Subject),
		SubjectName:   r.Subject.Name(),
		DurationHours: r.DurationHours,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRecordDTOs(records []*insightsDomain.StudyRecord) []*RecordDTO {
	dtos := make([]*RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

// SubjectDTO describes one of the fixed study subjects.
type SubjectDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Color     string `json:"color"`
}

func subjectDTOs() []SubjectDTO {
	subjects := tasksDomain.AllSubjects()
	dtos := make([]SubjectDTO, len(subjects))
	for i, s := range subjects {
		dtos[i] = SubjectDTO{
			ID:        string(s),
			Name:      s.Name(),
			ShortName: s.ShortName(),
			Color:     s.Color(),
		}
	}
	return dtos
}

// Request helpers

// requestUserID resolves the acting user: an X-User-ID header when
// present, the configured single user otherwise.
func requestUserID(r *http.Request, fallback uuid.UUID) (uuid.UUID, error) {
	header := r.Header.Get("X-User-ID")
	if header == "" {
		return fallback, nil
	}
	return uuid.Parse(header)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

package queries

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

// GetSummaryQuery asks for aggregate statistics over a period.
type GetSummaryQuery struct {
	UserID uuid.UUID
	Period Period
}

// SubjectSummary is one subject's share of the period.
type SubjectSummary struct {
	Subject   tasksDomain.Subject `json:"subject"`
	Name      string              `json:"name"`
	Color     string              `json:"color"`
	Pomodoros int                 `json:"pomodoros"`
	Hours     float64             `json:"hours"`
}

// SummaryResult is the period rollup. An empty period yields a zeroed
// summary, never an error.
type SummaryResult struct {
	Period            Period           `json:"period"`
	TotalPomodoros    int              `json:"totalPomodoros"`
	TotalFocusSeconds int              `json:"totalFocusSeconds"`
	TotalHours        float64          `json:"totalHours"`
	TasksCreated      int              `json:"tasksCreated"`
	TasksCompleted    int              `json:"tasksCompleted"`
	Subjects          []SubjectSummary `json:"subjects"`
}

// GetSummaryHandler handles the GetSummaryQuery.
type GetSummaryHandler struct {
	statsRepo domain.Repository
}

// NewGetSummaryHandler creates a new GetSummaryHandler.
func NewGetSummaryHandler(statsRepo domain.Repository) *GetSummaryHandler {
	return &GetSummaryHandler{statsRepo: statsRepo}
}

// Handle executes the GetSummaryQuery.
func (h *GetSummaryHandler) Handle(ctx context.Context, q GetSummaryQuery) (*SummaryResult, error) {
	from, to := q.Period.Range(time.Now())
	stats, err := h.statsRepo.FindRange(ctx, q.UserID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, err
	}

	result := &SummaryResult{Period: q.Period}
	bySubject := map[tasksDomain.Subject]int{}
	for _, day := range stats {
		result.TotalPomodoros += day.TotalPomodoros
		result.TotalFocusSeconds += day.TotalFocusSeconds
		result.TasksCreated += day.CreatedTasks
		result.TasksCompleted += day.CompletedTasks
		for _, s := range tasksDomain.AllSubjects() {
			bySubject[s] += day.SubjectPomodoros(s)
		}
	}
	result.TotalHours = roundHours(result.TotalFocusSeconds)

	// Focus hours are not tracked per subject, so each subject's hours
	// are estimated proportionally from its share of the pomodoros.
	subjectTotal := 0
	for _, s := range tasksDomain.AllSubjects() {
		subjectTotal += bySubject[s]
	}
	result.Subjects = make([]SubjectSummary, 0, len(bySubject))
	for _, s := range tasksDomain.AllSubjects() {
		summary := SubjectSummary{
			Subject:   s,
			Name:      s.Name(),
			Color:     s.Color(),
			Pomodoros: bySubject[s],
		}
		if subjectTotal > 0 {
			share := float64(bySubject[s]) / float64(subjectTotal)
			summary.Hours = round2(share * float64(result.TotalFocusSeconds) / 3600)
		}
		result.Subjects = append(result.Subjects, summary)
	}

	return result, nil
}

func roundHours(seconds int) float64 {
	return round2(float64(seconds) / 3600)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

// GetBreakdownQuery asks for the per-subject pie chart data.
type GetBreakdownQuery struct {
	UserID uuid.UUID
	Period Period
}

// PieSlice is one subject's slice. Subjects with zero pomodoros in the
// period are omitted.
type PieSlice struct {
	Name  string  `json:"name"`
	Value int     `json:"value"`
	Color string  `json:"color"`
	Hours float64 `json:"hours"`
}

// GetBreakdownHandler handles the GetBreakdownQuery.
type GetBreakdownHandler struct {
	statsRepo domain.Repository
}

// NewGetBreakdownHandler creates a new GetBreakdownHandler.
func NewGetBreakdownHandler(statsRepo domain.Repository) *GetBreakdownHandler {
	return &GetBreakdownHandler{statsRepo: statsRepo}
}

// Handle executes the GetBreakdownQuery.
func (h *GetBreakdownHandler) Handle(ctx context.Context, q GetBreakdownQuery) ([]PieSlice, error) {
	from, to := q.Period.Range(time.Now())
	stats, err := h.statsRepo.FindRange(ctx, q.UserID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		return nil, err
	}

	totalFocusSeconds := 0
	bySubject := map[tasksDomain.Subject]int{}
	subjectTotal := 0
	for _, day := range stats {
		totalFocusSeconds += day.TotalFocusSeconds
		for _, s := range tasksDomain.AllSubjects() {
			n := day.SubjectPomodoros(s)
			bySubject[s] += n
			subjectTotal += n
		}
	}

	slices := make([]PieSlice, 0, len(bySubject))
	for _, s := range tasksDomain.AllSubjects() {
		if bySubject[s] == 0 {
			continue
		}
		share := float64(bySubject[s]) / float64(subjectTotal)
		slices = append(slices, PieSlice{
			Name:  s.Name(),
			Value: bySubject[s],
			Color: s.Color(),
			Hours: round2(share * float64(totalFocusSeconds) / 3600),
		})
	}
	return slices, nil
}

package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

// GetHeatmapQuery asks for the contribution-style calendar of one year.
type GetHeatmapQuery struct {
	UserID uuid.UUID
	Year   int
}

// HeatmapDay is one day with at least one pomodoro. Level is the cell
// intensity 1-4 at thresholds >0, >4, >8, >12.
type HeatmapDay struct {
	Date      string `json:"date"`
	Pomodoros int    `json:"pomodoros"`
	Level     int    `json:"level"`
}

// GetHeatmapHandler handles the GetHeatmapQuery.
type GetHeatmapHandler struct {
	statsRepo domain.Repository
}

// NewGetHeatmapHandler creates a new GetHeatmapHandler.
func NewGetHeatmapHandler(statsRepo domain.Repository) *GetHeatmapHandler {
	return &GetHeatmapHandler{statsRepo: statsRepo}
}

// Handle executes the GetHeatmapQuery.
func (h *GetHeatmapHandler) Handle(ctx context.Context, q GetHeatmapQuery) ([]HeatmapDay, error) {
	year := q.Year
	if year == 0 {
		year = time.Now().Year()
	}
	if year < 2000 || year > 2100 {
		return nil, sharedDomain.Validationf("year %d out of range", year)
	}

	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-12-31", year)
	stats, err := h.statsRepo.FindRange(ctx, q.UserID, from, to)
	if err != nil {
		return nil, err
	}

	days := make([]HeatmapDay, 0, len(stats))
	for _, day := range stats {
		if day.TotalPomodoros == 0 {
			continue
		}
		days = append(days, HeatmapDay{
			Date:      day.Date,
			Pomodoros: day.TotalPomodoros,
			Level:     heatLevel(day.TotalPomodoros),
		})
	}
	return days, nil
}

func heatLevel(pomodoros int) int {
	switch {
	case pomodoros > 12:
		return 4
	case pomodoros > 8:
		return 3
	case pomodoros > 4:
		return 2
	case pomodoros > 0:
		return 1
	default:
		return 0
	}
}

package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/domain"
	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

const (
	defaultSeriesDays = 7
	maxSeriesDays     = 90
)

// GetDailySeriesQuery asks for a zero-filled day-by-day series ending today.
type GetDailySeriesQuery struct {
	UserID uuid.UUID
	Days   int
}

// DailyPoint is one day of the series. Days without a stat row are
// zero-filled so charts get a continuous axis.
type DailyPoint struct {
	Date           string  `json:"date"`
	Pomodoros      int     `json:"pomodoros"`
	Hours          float64 `json:"hours"`
	TasksCompleted int     `json:"tasksCompleted"`
}

// GetDailySeriesHandler handles the GetDailySeriesQuery.
type GetDailySeriesHandler struct {
	statsRepo domain.Repository
}

// NewGetDailySeriesHandler creates a new GetDailySeriesHandler.
func NewGetDailySeriesHandler(statsRepo domain.Repository) *GetDailySeriesHandler {
	return &GetDailySeriesHandler{statsRepo: statsRepo}
}

// Handle executes the GetDailySeriesQuery.
func (h *GetDailySeriesHandler) Handle(ctx context.Context, q GetDailySeriesQuery) ([]DailyPoint, error) {
	days := q.Days
	if days == 0 {
		days = defaultSeriesDays
	}
	if days < 1 || days > maxSeriesDays {
		return nil, sharedDomain.Validationf("days must be between 1 and %d", maxSeriesDays)
	}

	now := time.Now()
	from := now.AddDate(0, 0, -(days - 1))
	stats, err := h.statsRepo.FindRange(ctx, q.UserID, domain.DateOf(from), domain.DateOf(now))
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*domain.DailyStat, len(stats))
	for _, day := range stats {
		byDate[day.Date] = day
	}

	series := make([]DailyPoint, 0, days)
	for i := 0; i < days; i++ {
		date := domain.DateOf(from.AddDate(0, 0, i))
		point := DailyPoint{Date: date}
		if day, ok := byDate[date]; ok {
			point.Pomodoros = day.TotalPomodoros
			point.Hours = roundHours(day.TotalFocusSeconds)
			point.TasksCompleted = day.CompletedTasks
		}
		series = append(series, point)
	}
	return series, nil
}

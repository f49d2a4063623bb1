package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
	"github.com/yifanzh/studyclock/internal/timer/domain"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 365
)

// GetSessionStatsQuery asks for raw session statistics over the last
// N days, computed from the session rows themselves rather than the
// daily rollup.
type GetSessionStatsQuery struct {
	UserID uuid.UUID
	Days   int
}

// SessionStatsResult summarizes the window.
type SessionStatsResult struct {
	Total             int            `json:"total"`
	Completed         int            `json:"completed"`
	Cancelled         int            `json:"cancelled"`
	TotalFocusSeconds int            `json:"totalFocusSeconds"`
	ByKind            map[string]int `json:"byKind"`
	ByDay             map[string]int `json:"byDay"`
}

// GetSessionStatsHandler handles the GetSessionStatsQuery.
type GetSessionStatsHandler struct {
	sessionRepo domain.Repository
}

// NewGetSessionStatsHandler creates a new GetSessionStatsHandler.
func NewGetSessionStatsHandler(sessionRepo domain.Repository) *GetSessionStatsHandler {
	return &GetSessionStatsHandler{sessionRepo: sessionRepo}
}

// Handle executes the GetSessionStatsQuery.
func (h *GetSessionStatsHandler) Handle(ctx context.Context, q GetSessionStatsQuery) (*SessionStatsResult, error) {
	days := q.Days
	if days == 0 {
		days = defaultStatsDays
	}
	if days < 1 || days > maxStatsDays {
		return nil, sharedDomain.Validationf("days must be between 1 and %d", maxStatsDays)
	}

	since := time.Now().AddDate(0, 0, -(days - 1))
	since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())

	sessions, err := h.sessionRepo.FindSince(ctx, q.UserID, since)
	if err != nil {
		return nil, err
	}

	result := &SessionStatsResult{
		ByKind: make(map[string]int),
		ByDay:  make(map[string]int),
	}
	for _, s := range sessions {
		result.Total++
		result.ByKind[string(s.Kind)]++
		result.ByDay[s.StartedAt.Local().Format("2006-01-02")]++
		switch s.Status {
		case domain.StatusCompleted:
			result.Completed++
			if s.IsFocus() {
				result.TotalFocusSeconds += s.ElapsedSeconds
			}
		case domain.StatusCancelled:
			result.Cancelled++
		}
	}
	return result, nil
}

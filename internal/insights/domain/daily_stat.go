// Package domain holds the statistics rollups: the per-user-per-day
// aggregate row and the manual study log.
package domain

import (
	"time"

	"github.com/google/uuid"

	tasksDomain "github.com/yifanzh/studyclock/internal/tasks/domain"
)

// DateLayout is the day-granularity key used for stat rows.
const DateLayout = "2006-01-02"

// DateOf returns the calendar-day bucket for a point in time. Sessions
// are bucketed by completion time, not start time.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// DailyStat is the per-user-per-day rollup. Rows are created lazily on
// first write for a day and mutated only through atomic increments.
type DailyStat struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Date              string
	TotalPomodoros    int
	TotalFocusSeconds int
	TotalBreakSeconds int
	Pomodoros408      int
	PomodorosMath     int
	PomodorosEnglish  int
	PomodorosPolitics int
	CompletedTasks    int
	CreatedTasks      int
	CreatedAt         time.Time
}

// SubjectPomodoros returns the counter for one subject bucket.
func (d *DailyStat) SubjectPomodoros(subject tasksDomain.Subject) int {
	switch subject {
	case tasksDomain.SubjectComputer408:
		return d.Pomodoros408
	case tasksDomain.SubjectMath:
		return d.PomodorosMath
	case tasksDomain.SubjectEnglish:
		return d.PomodorosEnglish
	case tasksDomain.SubjectPolitics:
		return d.PomodorosPolitics
	default:
		return 0
	}
}

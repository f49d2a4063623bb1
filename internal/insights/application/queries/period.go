package queries

import (
	"time"

	sharedDomain "github.com/yifanzh/studyclock/internal/shared/domain"
)

// Period selects the date range of a statistics query.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod converts a raw string into a Period. Empty defaults to today.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodToday, "":
		return PeriodToday, nil
	case PeriodWeek, PeriodMonth:
		return Period(s), nil
	default:
		return "", sharedDomain.Validationf("unknown period %q", s)
	}
}

// Range returns the inclusive [from, to] day bounds of the period,
// anchored at now. Week is the last seven days; month is the calendar
// month so far.
func (p Period) Range(now time.Time) (from, to time.Time) {
	to = now
	switch p {
	case PeriodWeek:
		from = now.AddDate(0, 0, -6)
	case PeriodMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		from = now
	}
	return from, to
}

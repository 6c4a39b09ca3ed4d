package rollup

import (
	"fmt"
	"time"
)

// Period names a dashboard overview window.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod maps a query value to a Period. An empty value defaults to
// month; anything else unknown is an error.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(s), nil
	case "":
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// PeriodRange resolves a period to its closed [start, end] window:
// week is the last 7 calendar days through now, month runs from the first
// of the month, quarter from the first day of the 3-month block containing
// now, year from January 1. The end is always now. Boundaries are UTC
// calendar days, matching how dates are stored.
func PeriodRange(p Period, now time.Time) (start, end time.Time) {
	now = now.UTC()
	end = now
	switch p {
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodQuarter:
		quarterStart := (int(now.Month())-1)/3*3 + 1
		start = time.Date(now.Year(), time.Month(quarterStart), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default: // month
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return start, end
}

// InRange reports whether t falls inside the closed range [start, end].
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

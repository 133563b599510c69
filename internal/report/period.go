// Package report turns planner data for a period into a prompt and sends it
// to a text-generation backend.
package report

import (
	"fmt"
	"strings"
	"time"
)

// Period is the span a report covers.
type Period string

// Supported report periods.
const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
)

// ParsePeriod validates a period name.
func ParsePeriod(value string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(value))); p {
	case Day, Week, Month:
		return p, nil
	default:
		return "", fmt.Errorf("unknown report period %q (want day, week or month)", value)
	}
}

// Range returns the half-open interval [from, to) of the period that
// contains anchor. Weeks start on Monday.
func (p Period) Range(anchor time.Time) (time.Time, time.Time) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	switch p {
	case Week:
		offset := (int(day.Weekday()) + 6) % 7
		from := day.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7)
	case Month:
		from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return from, from.AddDate(0, 1, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}

func (p Period) label() string {
	switch p {
	case Week:
		return "weekly"
	case Month:
		return "monthly"
	default:
		return "daily"
	}
}

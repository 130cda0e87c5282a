package report

import (
	"fmt"
	"time"
)

// Period is the granularity of a completion report.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a period tag.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(raw), nil
	default:
		return "", fmt.Errorf("invalid report period %q", raw)
	}
}

// RangeFor computes the half-open UTC interval [start, end) for the
// given period around a reference instant. Pure: identical inputs
// always yield identical bounds, including across year boundaries.
func RangeFor(period Period, ref time.Time) (start, end time.Time) {
	ref = ref.UTC()
	switch period {
	case PeriodWeekly:
		start = startOfWeekUTC(ref)
		return start, start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	default:
		start = startOfDayUTC(ref)
		return start, start.AddDate(0, 0, 1)
	}
}

func startOfDayUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeekUTC returns Monday 00:00 UTC of the ISO week containing t.
func startOfWeekUTC(t time.Time) time.Time {
	day := startOfDayUTC(t)
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return day.AddDate(0, 0, -offset)
}

// LastDayOfMonth reports whether the next calendar day of t rolls over
// to day 1 of a new month.
func LastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Day() == 1
}

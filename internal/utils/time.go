package utils

import (
	"math"
	"time"
)

func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 999999999, t.Location())
}

// WeekNumber computes the week of the year from the January 1 week, matching
// the time-bucketing used by the hourly demand records. Not strict ISO-8601:
// week 1 is the week containing January 1 regardless of which weekday it falls
// on.
func WeekNumber(t time.Time) int {
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.Sub(yearStart).Hours() / 24
	return int(math.Ceil((days + float64(yearStart.Weekday()) + 1) / 7))
}

func FormatTimeISO(t time.Time) string {
	return t.Format(time.RFC3339)
}

func ParseTimeISO(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// EpochMillis converts to the epoch-millisecond timestamps demand records
// store.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

package model

import (
	"fmt"
	"time"
)

// DateLayout is the persisted form of a calendar day.
const DateLayout = "2006-01-02"

// Day returns the calendar day of t as midnight UTC. The wall-clock date of t
// in its own location is kept, so a local 00:30 stays on the same day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts the calendar day of t by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// ParseDate parses a persisted calendar day. Drivers that hand DATE columns
// back as timestamps ("2024-05-01T00:00:00Z") are accepted as well.
func ParseDate(s string) (time.Time, error) {
	if len(s) < len(DateLayout) {
		return time.Time{}, fmt.Errorf("parse date %q: too short", s)
	}
	t, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

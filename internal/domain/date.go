package domain

import "time"

// DateLayout is the calendar date format used throughout the record store.
const DateLayout = "2006-01-02"

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats a calendar day for storage.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// ParseDate parses a stored calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

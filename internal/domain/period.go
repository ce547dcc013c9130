package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"attendance-tracker/internal/errors"
)

// periodPattern matches exactly the YYYY-MM period key format.
var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// MonthPeriod is a calendar month identified by a "YYYY-MM" key, expanded
// to its first and last calendar day. It is recomputed on demand and never
// persisted.
type MonthPeriod struct {
	Year      int
	Month     time.Month
	StartDate time.Time
	EndDate   time.Time
}

// ParsePeriod parses and validates a "YYYY-MM" period key. Format failure
// takes precedence over range failure so error messages stay deterministic.
func ParsePeriod(text string) (MonthPeriod, error) {
	if !periodPattern.MatchString(text) {
		return MonthPeriod{}, errors.NewInvalidFormatError(text)
	}

	year, _ := strconv.Atoi(text[:4])
	month, _ := strconv.Atoi(text[5:])
	if month < 1 || month > 12 {
		return MonthPeriod{}, errors.NewInvalidMonthError(month)
	}

	return newMonthPeriod(year, time.Month(month)), nil
}

// FormatPeriod renders a period key from its components.
func FormatPeriod(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// PeriodOf returns the month period containing the given date.
func PeriodOf(date time.Time) MonthPeriod {
	u := date.UTC()
	return newMonthPeriod(u.Year(), u.Month())
}

func newMonthPeriod(year int, month time.Month) MonthPeriod {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one, which handles
	// 28/29/30/31-day months and leap years without a lookup table.
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return MonthPeriod{
		Year:      year,
		Month:     month,
		StartDate: start,
		EndDate:   end,
	}
}

// Contains reports whether the given date falls inside the period.
func (p MonthPeriod) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Days returns every calendar day of the period in order.
func (p MonthPeriod) Days() []time.Time {
	var days []time.Time
	for d := p.StartDate; !d.After(p.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String returns the period's YYYY-MM key.
func (p MonthPeriod) String() string {
	return FormatPeriod(p.Year, p.Month)
}

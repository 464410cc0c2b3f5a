package utils

import (
	"fmt"
	"time"
)

// Rent dates are civil dates. They are carried as time.Time values at
// midnight UTC so that comparisons and arithmetic never cross a DST edge.

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(tz string) *time.Location {
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateOnly returns midnight UTC of the calendar day that t falls on in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// AddMonthsClamped moves d by n calendar months keeping the day of month,
// clamped to the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from `from` to `to`.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to, time.UTC).Sub(DateOnly(from, time.UTC)).Hours() / 24)
}

// MonthStart returns the first day of d's month.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

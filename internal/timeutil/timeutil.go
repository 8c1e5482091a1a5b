package timeutil

import (
	"fmt"
	"time"
)

const (
	dateLayout        = "2006-01-02"
	timeLayout        = "15:04:05"
	displayLayout     = "02 Jan 2006, 15:04"
	displayDateLayout = "02 Jan 2006"
)

// Fixed offset used when the IANA database is unavailable on the host.
// The bot assumes a single timezone (Asia/Jakarta, UTC+7) throughout.
var fallbackLocation = time.FixedZone("WIB", 7*60*60)

// ResolveLocation returns the configured location with a fixed-offset fallback.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return fallbackLocation, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fallbackLocation, true
	}
	return loc, false
}

// ParseDate parses a strict YYYY-MM-DD calendar date in the provided location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("date value is required")
	}

	d, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", value)
	}
	return d, nil
}

// ParseTimeOfDay parses a strict 24-hour HH:MM:SS clock time.
func ParseTimeOfDay(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("time value is required")
	}

	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse time: %s", value)
	}
	return t, nil
}

// Combine merges a date and a clock time into a single instant in the
// provided location. Both parts must be independently well-formed.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseTimeOfDay(clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// StartOfDay returns local midnight for the given instant.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// FormatLocal renders an instant for user-facing messages.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(displayLayout)
}

// FormatLocalDate renders a date without a clock time, for all-day events.
func FormatLocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(displayDateLayout)
}

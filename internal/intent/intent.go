package intent

import (
	"errors"
	"strings"
	"time"

	"github.com/danharahap/schedbot/internal/timeutil"
)

// Rejection reasons surfaced to the user. Date/time and title problems must
// stay distinguishable so the bot can tell the user what to rephrase.
var (
	ErrMissingDateTime = errors.New("schedule is missing a date or time")
	ErrMissingTitle    = errors.New("schedule is missing a title")
)

// ScheduleIntent is the validated form of an extracted scheduling request.
type ScheduleIntent struct {
	Title    string
	Location string // empty means no location
	Date     string // YYYY-MM-DD
	Time     string // HH:MM:SS, 24-hour
	Category string
}

// StartTime combines the date and clock time into a single instant.
// Fails if either part is not independently well-formed.
func (s *ScheduleIntent) StartTime(loc *time.Location) (time.Time, error) {
	return timeutil.Combine(s.Date, s.Time, loc)
}

// fieldAliases maps each logical field to the extractor output keys it may
// arrive under, in resolution order. The extractor's key naming is not
// guaranteed stable, so the validator accepts every documented form.
var fieldAliases = map[string][]string{
	"title":    {"title", "event_title"},
	"location": {"location", "place"},
	"date":     {"date"},
	"time":     {"time"},
	"category": {"category"},
}

// Validator normalizes raw extractor field bags into ScheduleIntents.
type Validator struct {
	defaultCategory string
}

// NewValidator creates a validator with the configured fallback category.
func NewValidator(defaultCategory string) *Validator {
	if defaultCategory == "" {
		defaultCategory = "Other"
	}
	return &Validator{defaultCategory: defaultCategory}
}

// Validate checks mandatory fields and builds a canonical ScheduleIntent.
// Date and time are checked first, then title; category and location are
// informational and never block.
func (v *Validator) Validate(fields map[string]string) (*ScheduleIntent, error) {
	date, ok := resolve(fields, "date")
	if !ok {
		return nil, ErrMissingDateTime
	}
	clock, ok := resolve(fields, "time")
	if !ok {
		return nil, ErrMissingDateTime
	}

	title, ok := resolve(fields, "title")
	if !ok {
		return nil, ErrMissingTitle
	}

	category, ok := resolve(fields, "category")
	if !ok {
		category = v.defaultCategory
	}

	location, _ := resolve(fields, "location")

	return &ScheduleIntent{
		Title:    title,
		Location: location,
		Date:     date,
		Time:     clock,
		Category: category,
	}, nil
}

// resolve looks a logical field up through its alias list, skipping keys
// that are present but blank.
func resolve(fields map[string]string, logical string) (string, bool) {
	for _, key := range fieldAliases[logical] {
		if value, ok := fields[key]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

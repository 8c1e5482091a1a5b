package schedule

import (
	"strings"

	"github.com/danharahap/schedbot/internal/gcal"
)

// Exclude drops every event whose summary contains the substring under
// case-insensitive comparison, preserving input order. An empty substring
// excludes nothing.
func Exclude(events []gcal.Event, substring string) []gcal.Event {
	if substring == "" {
		return events
	}

	needle := strings.ToLower(substring)
	result := make([]gcal.Event, 0, len(events))
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Summary), needle) {
			continue
		}
		result = append(result, event)
	}
	return result
}

// Cap truncates the list to at most limit entries. Display and selection
// flows only: bulk deletion always operates on the full filtered set.
func Cap(events []gcal.Event, limit int) []gcal.Event {
	if limit <= 0 || len(events) <= limit {
		return events
	}
	return events[:limit]
}

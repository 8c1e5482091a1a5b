package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danharahap/schedbot/internal/gcal"
)

func makeEvents(summaries ...string) []gcal.Event {
	events := make([]gcal.Event, 0, len(summaries))
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, s := range summaries {
		events = append(events, gcal.Event{
			ID:        string(rune('a' + i)),
			Summary:   s,
			StartTime: start.Add(time.Duration(i) * time.Hour),
		})
	}
	return events
}

func TestExclude_CaseInsensitive(t *testing.T) {
	events := makeEvents(
		"Happy Birthday Sam",
		"HAPPY BIRTHDAY SAM",
		"Team sync",
		"happy birthday dinner",
	)

	got := Exclude(events, "happy birthday")

	assert.Len(t, got, 1)
	assert.Equal(t, "Team sync", got[0].Summary)
}

func TestExclude_Idempotent(t *testing.T) {
	events := makeEvents("Happy Birthday Sam", "Team sync", "Drone shoot")

	once := Exclude(events, "happy birthday")
	twice := Exclude(once, "happy birthday")

	assert.Equal(t, once, twice)
}

func TestExclude_PreservesOrder(t *testing.T) {
	events := makeEvents("First", "happy birthday", "Second", "Third")

	got := Exclude(events, "happy birthday")

	assert.Equal(t, []string{"First", "Second", "Third"},
		[]string{got[0].Summary, got[1].Summary, got[2].Summary})
}

func TestExclude_EmptySubstringExcludesNothing(t *testing.T) {
	events := makeEvents("Happy Birthday Sam", "Team sync")
	assert.Equal(t, events, Exclude(events, ""))
}

func TestCap(t *testing.T) {
	events := makeEvents("a", "b", "c", "d", "e")

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "under limit untouched", limit: 10, want: 5},
		{name: "at limit untouched", limit: 5, want: 5},
		{name: "over limit truncated", limit: 3, want: 3},
		{name: "zero limit means uncapped", limit: 0, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cap(events, tt.limit)
			assert.Len(t, got, tt.want)
			if len(got) > 0 {
				assert.Equal(t, "a", got[0].Summary, "truncation keeps the head of the list")
			}
		})
	}
}

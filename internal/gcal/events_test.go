package gcal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
)

func TestParseGoogleEventStart(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)

	t.Run("timed event with offset", func(t *testing.T) {
		item := &calendar.Event{
			Start: &calendar.EventDateTime{DateTime: "2025-05-01T14:00:00+07:00"},
		}
		start, allDay, err := parseGoogleEventStart(item, loc)
		require.NoError(t, err)
		assert.False(t, allDay)
		assert.True(t, time.Date(2025, 5, 1, 14, 0, 0, 0, loc).Equal(start))
	})

	t.Run("all-day event uses whole-day date", func(t *testing.T) {
		item := &calendar.Event{
			Start: &calendar.EventDateTime{Date: "2025-05-01"},
		}
		start, allDay, err := parseGoogleEventStart(item, loc)
		require.NoError(t, err)
		assert.True(t, allDay)
		assert.True(t, time.Date(2025, 5, 1, 0, 0, 0, 0, loc).Equal(start))
	})

	t.Run("missing start is an error", func(t *testing.T) {
		_, _, err := parseGoogleEventStart(&calendar.Event{}, loc)
		assert.Error(t, err)
	})

	t.Run("empty datetime is an error", func(t *testing.T) {
		item := &calendar.Event{Start: &calendar.EventDateTime{}}
		_, _, err := parseGoogleEventStart(item, loc)
		assert.Error(t, err)
	})

	t.Run("malformed datetime is an error", func(t *testing.T) {
		item := &calendar.Event{
			Start: &calendar.EventDateTime{DateTime: "tomorrow at noon"},
		}
		_, _, err := parseGoogleEventStart(item, loc)
		assert.Error(t, err)
	})
}

func TestIsEventNotFound(t *testing.T) {
	assert.True(t, IsEventNotFound(ErrEventNotFound))
	assert.False(t, IsEventNotFound(assert.AnError))
	assert.False(t, IsEventNotFound(nil))
}

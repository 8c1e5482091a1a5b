package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

var ErrEventNotFound = errors.New("google calendar event not found")

// IsEventNotFound returns true when a Google Calendar event no longer exists.
func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// Event is the immutable view of a single Google Calendar event held by
// the core. The ID is backend-assigned and required for deletion.
type Event struct {
	ID        string
	Summary   string
	StartTime time.Time
	AllDay    bool
}

func parseGoogleEventStart(item *calendar.Event, loc *time.Location) (time.Time, bool, error) {
	if item == nil || item.Start == nil {
		return time.Time{}, false, fmt.Errorf("event is missing start")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		return startDate, true, nil
	}

	if item.Start.DateTime == "" {
		return time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}

	return startTime, false, nil
}

// ListUpcoming returns upcoming events starting at from, pre-sorted
// ascending by start time, with recurring entries expanded to single
// instances. maxResults of zero means the full unbounded window; the call
// pages through all results either way.
func (c *Client) ListUpcoming(ctx context.Context, from time.Time, maxResults int64) ([]Event, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}

	var result []Event
	pageToken := ""
	loc := time.Now().Location()

	for {
		call := c.service.Events.List(c.calendarID).
			TimeMin(from.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime").
			Context(ctx)
		if maxResults > 0 {
			call = call.MaxResults(maxResults)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		for _, item := range events.Items {
			startTime, allDay, parseErr := parseGoogleEventStart(item, loc)
			if parseErr != nil {
				// Skip malformed events rather than failing the whole request.
				continue
			}
			result = append(result, Event{
				ID:        item.Id,
				Summary:   item.Summary,
				StartTime: startTime,
				AllDay:    allDay,
			})
			if maxResults > 0 && int64(len(result)) >= maxResults {
				return result, nil
			}
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return result, nil
}

// Insert creates a new event and returns the persisted form, including the
// backend-assigned ID.
func (c *Client) Insert(ctx context.Context, input EventInput) (*Event, error) {
	if c.service == nil {
		return nil, fmt.Errorf("calendar service not initialized")
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
			TimeZone: c.timezone,
		},
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &Event{
		ID:        created.Id,
		Summary:   created.Summary,
		StartTime: input.StartTime,
	}, nil
}

// Delete removes an event by ID.
func (c *Client) Delete(ctx context.Context, eventID string) error {
	if c.service == nil {
		return fmt.Errorf("calendar service not initialized")
	}
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}

	err := c.service.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && (gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

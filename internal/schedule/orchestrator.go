package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/danharahap/schedbot/internal/gcal"
	"github.com/danharahap/schedbot/internal/intent"
	"github.com/danharahap/schedbot/internal/timeutil"
)

const defaultEventDuration = time.Hour

// Config carries the immutable policy knobs for the orchestrator. It is
// built once at startup and injected; core logic never reads ambient state.
type Config struct {
	ExcludeSubstring string
	FetchLimit       int64
	DisplayLimit     int
	Location         *time.Location
	Now              func() time.Time
}

// Orchestrator sequences fetch → filter → act for the four user intents and
// owns the confirm/cancel protocol for bulk deletion. The only state kept
// across requests is the set of pending bulk-delete confirmations, keyed by
// chat so one user's confirmation can never trigger another's deletion.
type Orchestrator struct {
	gateway   Gateway
	extractor Extractor
	validator *intent.Validator
	cfg       Config

	mu      sync.Mutex
	pending map[int64]struct{}
}

// New creates an orchestrator with the injected collaborators.
func New(gateway Gateway, extractor Extractor, validator *intent.Validator, cfg Config) *Orchestrator {
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 20
	}
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = 10
	}
	if cfg.Location == nil {
		cfg.Location, _ = timeutil.ResolveLocation("")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Orchestrator{
		gateway:   gateway,
		extractor: extractor,
		validator: validator,
		cfg:       cfg,
		pending:   make(map[int64]struct{}),
	}
}

// ReadSchedule lists upcoming events from local midnight and renders them
// oldest first, birthdays excluded, capped for display.
func (o *Orchestrator) ReadSchedule(ctx context.Context, r Responder) error {
	if err := r.Reply(ctx, "Looking up your schedule..."); err != nil {
		return err
	}

	from := timeutil.StartOfDay(o.cfg.Now(), o.cfg.Location)
	events, err := o.gateway.ListUpcoming(ctx, from, o.cfg.FetchLimit)
	if err != nil {
		fmt.Printf("Schedule: error listing events: %v\n", err)
		return r.Reply(ctx, "Sorry, something went wrong while fetching your schedule.")
	}

	events = Exclude(events, o.cfg.ExcludeSubstring)
	if len(events) == 0 {
		return r.Reply(ctx, "No upcoming events found (besides birthdays).")
	}

	var msg strings.Builder
	msg.WriteString("🗓️ Your upcoming schedule:\n\n")
	for _, event := range Cap(events, o.cfg.DisplayLimit) {
		when := timeutil.FormatLocal(event.StartTime, o.cfg.Location)
		if event.AllDay {
			when = timeutil.FormatLocalDate(event.StartTime, o.cfg.Location)
		}
		msg.WriteString(fmt.Sprintf("- %s\n  %s\n", event.Summary, when))
	}

	return r.Reply(ctx, msg.String())
}

// CreateEvent runs the extraction pipeline over free text and inserts the
// resulting event with a fixed one-hour duration.
func (o *Orchestrator) CreateEvent(ctx context.Context, r Responder, text string) error {
	if err := r.Reply(ctx, "Working on it..."); err != nil {
		return err
	}

	fields, err := o.extractor.Extract(ctx, text, o.cfg.Now().In(o.cfg.Location))
	if err != nil || len(fields) == 0 {
		if err != nil {
			fmt.Printf("Schedule: extraction failed: %v\n", err)
		}
		return r.Reply(ctx, "Sorry, I couldn't understand a schedule in that message. Try rephrasing it.")
	}

	parsed, err := o.validator.Validate(fields)
	if err != nil {
		switch {
		case errors.Is(err, intent.ErrMissingTitle):
			return r.Reply(ctx, "Sorry, I couldn't determine a title for the event.")
		default:
			return r.Reply(ctx, "Sorry, I couldn't determine the date or time. Please include both.")
		}
	}

	start, err := parsed.StartTime(o.cfg.Location)
	if err != nil {
		fmt.Printf("Schedule: malformed date/time from extractor: %v\n", err)
		return r.Reply(ctx, "Sorry, I couldn't make sense of the date or time. Please include both.")
	}
	end := start.Add(defaultEventDuration)

	description := fmt.Sprintf("Category: %s", parsed.Category)
	if parsed.Location != "" {
		description += fmt.Sprintf("\n\n📍 Open in Maps: %s", MapsSearchURL(parsed.Location))
	}

	created, err := o.gateway.Insert(ctx, gcal.EventInput{
		Summary:     parsed.Title,
		Description: description,
		Location:    parsed.Location,
		StartTime:   start,
		EndTime:     end,
	})
	if err != nil {
		fmt.Printf("Schedule: error inserting event: %v\n", err)
		return r.Reply(ctx, "Sorry, something went wrong while saving to the calendar.")
	}

	confirmation := fmt.Sprintf(
		"✅ Saved! The event is on your calendar.\n\nEvent: %s\nWhen: %s",
		created.Summary,
		timeutil.FormatLocal(start, o.cfg.Location),
	)
	if parsed.Location != "" {
		confirmation += fmt.Sprintf("\nWhere: %s", parsed.Location)
	}

	return r.Reply(ctx, confirmation)
}

// ListDeletable presents upcoming events as one-per-button deletion
// targets. Same fetch and filter as ReadSchedule; the display cap is safe
// here because each selection deletes exactly one event.
func (o *Orchestrator) ListDeletable(ctx context.Context, r Responder) error {
	from := timeutil.StartOfDay(o.cfg.Now(), o.cfg.Location)
	events, err := o.gateway.ListUpcoming(ctx, from, o.cfg.FetchLimit)
	if err != nil {
		fmt.Printf("Schedule: error listing events: %v\n", err)
		return r.Reply(ctx, "Sorry, something went wrong while fetching your schedule.")
	}

	events = Exclude(events, o.cfg.ExcludeSubstring)
	if len(events) == 0 {
		return r.Reply(ctx, "No upcoming events to delete (besides birthdays).")
	}

	events = Cap(events, o.cfg.DisplayLimit)
	choices := make([]Choice, 0, len(events))
	for _, event := range events {
		choices = append(choices, Choice{
			Label:  fmt.Sprintf("❌ %s", event.Summary),
			Action: Action{Kind: ActionDeleteOne, EventID: event.ID},
		})
	}

	return r.PresentChoices(ctx, "Pick the event you want to delete:", choices)
}

// RequestDeleteAll registers a pending confirmation for this chat and asks
// for an explicit yes/no.
func (o *Orchestrator) RequestDeleteAll(ctx context.Context, chatID int64, r Responder) error {
	o.mu.Lock()
	o.pending[chatID] = struct{}{}
	o.mu.Unlock()

	return r.PresentChoices(ctx,
		"⚠️ WARNING! Are you sure you want to delete ALL upcoming events (besides birthdays)? This cannot be undone.",
		[]Choice{
			{Label: "🔴 Yes, delete everything", Action: Action{Kind: ActionConfirmDeleteAll}},
			{Label: "Cancel", Action: Action{Kind: ActionCancelDeleteAll}},
		},
	)
}

// HandleAction dispatches a decoded callback action for the given chat.
func (o *Orchestrator) HandleAction(ctx context.Context, chatID int64, r Responder, action Action) error {
	switch action.Kind {
	case ActionDeleteOne:
		return o.deleteOne(ctx, r, action.EventID)
	case ActionConfirmDeleteAll:
		return o.confirmDeleteAll(ctx, chatID, r)
	case ActionCancelDeleteAll:
		return o.cancelDeleteAll(ctx, chatID, r)
	}
	return fmt.Errorf("unhandled action kind: %d", action.Kind)
}

// deleteOne removes a single event. Deletion is idempotent from the user's
// perspective: a not-found failure reads the same as any other failure.
func (o *Orchestrator) deleteOne(ctx context.Context, r Responder, eventID string) error {
	if err := o.gateway.Delete(ctx, eventID); err != nil {
		fmt.Printf("Schedule: error deleting event %s: %v\n", eventID, err)
		return r.EditMessage(ctx, "Could not delete the event.")
	}
	return r.EditMessage(ctx, "Event deleted.")
}

// confirmDeleteAll consumes the pending confirmation and deletes the full
// filtered set of upcoming events. The window starts at UTC now, not local
// midnight: the warning promised to remove everything upcoming, so the
// wider window is kept on purpose. Individual failures are logged and
// skipped; the final count reflects successful deletions only.
func (o *Orchestrator) confirmDeleteAll(ctx context.Context, chatID int64, r Responder) error {
	if !o.consumePending(chatID) {
		return r.EditMessage(ctx, "No deletion is waiting for confirmation.")
	}

	if err := r.EditMessage(ctx, "Working on it, please wait..."); err != nil {
		return err
	}

	// Re-fetch rather than reuse any displayed list: the calendar may have
	// changed between the warning prompt and the confirmation. No display
	// cap here; the full filtered set is in scope.
	events, err := o.gateway.ListUpcoming(ctx, o.cfg.Now().UTC(), 0)
	if err != nil {
		fmt.Printf("Schedule: error listing events for bulk delete: %v\n", err)
		return r.EditMessage(ctx, "Sorry, something went wrong while fetching your schedule.")
	}

	events = Exclude(events, o.cfg.ExcludeSubstring)

	count := 0
	for _, event := range events {
		if err := o.gateway.Delete(ctx, event.ID); err != nil {
			fmt.Printf("Schedule: could not delete event %s: %v\n", event.ID, err)
			continue
		}
		count++
	}

	return r.EditMessage(ctx, fmt.Sprintf("✅ Done! %d upcoming events deleted.", count))
}

// cancelDeleteAll discards the pending confirmation without touching the
// calendar.
func (o *Orchestrator) cancelDeleteAll(ctx context.Context, chatID int64, r Responder) error {
	if !o.consumePending(chatID) {
		return r.EditMessage(ctx, "No deletion is waiting for confirmation.")
	}
	return r.EditMessage(ctx, "Action cancelled.")
}

// consumePending removes the chat's pending confirmation, reporting whether
// one was outstanding. A confirmation is consumed exactly once.
func (o *Orchestrator) consumePending(chatID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.pending[chatID]; !ok {
		return false
	}
	delete(o.pending, chatID)
	return true
}

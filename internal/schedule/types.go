package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danharahap/schedbot/internal/gcal"
)

// Extractor turns free-form text into a raw field bag. It is an opaque,
// possibly-unreliable oracle: an error or an empty bag both mean extraction
// failed, and the orchestrator treats them uniformly.
type Extractor interface {
	Extract(ctx context.Context, text string, referenceDate time.Time) (map[string]string, error)
}

// Gateway is the remote calendar capability: list a window of upcoming
// events (pre-sorted ascending), insert one event, delete one by ID.
type Gateway interface {
	ListUpcoming(ctx context.Context, from time.Time, maxResults int64) ([]gcal.Event, error)
	Insert(ctx context.Context, input gcal.EventInput) (*gcal.Event, error)
	Delete(ctx context.Context, eventID string) error
}

// Choice is one selectable option on an interactive prompt.
type Choice struct {
	Label  string
	Action Action
}

// Responder is the outbound half of one user interaction. EditMessage
// targets the single editable prior message of an interactive callback.
type Responder interface {
	Reply(ctx context.Context, text string) error
	PresentChoices(ctx context.Context, prompt string, choices []Choice) error
	EditMessage(ctx context.Context, text string) error
}

// ActionKind discriminates the callback actions the bot understands.
type ActionKind int

const (
	ActionDeleteOne ActionKind = iota
	ActionConfirmDeleteAll
	ActionCancelDeleteAll
)

// Action is the tagged variant carried in callback data. EventID is only
// set for ActionDeleteOne.
type Action struct {
	Kind    ActionKind
	EventID string
}

const (
	deleteOnePrefix = "del:"
	confirmAllToken = "delall:confirm"
	cancelAllToken  = "delall:cancel"
)

// Encode renders the action as compact callback data.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionDeleteOne:
		return deleteOnePrefix + a.EventID
	case ActionConfirmDeleteAll:
		return confirmAllToken
	case ActionCancelDeleteAll:
		return cancelAllToken
	}
	return ""
}

// ParseAction decodes callback data back into an Action. Unknown data is an
// error so the transport can ignore stale or foreign callbacks.
func ParseAction(data string) (Action, error) {
	switch {
	case data == confirmAllToken:
		return Action{Kind: ActionConfirmDeleteAll}, nil
	case data == cancelAllToken:
		return Action{Kind: ActionCancelDeleteAll}, nil
	case strings.HasPrefix(data, deleteOnePrefix):
		id := strings.TrimPrefix(data, deleteOnePrefix)
		if id == "" {
			return Action{}, fmt.Errorf("delete action has no event id")
		}
		return Action{Kind: ActionDeleteOne, EventID: id}, nil
	}
	return Action{}, fmt.Errorf("unknown callback data: %q", data)
}

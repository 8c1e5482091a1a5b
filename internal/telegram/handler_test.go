package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danharahap/schedbot/internal/gcal"
	"github.com/danharahap/schedbot/internal/intent"
	"github.com/danharahap/schedbot/internal/schedule"
)

// recordingInvoker captures raw API requests instead of hitting the network
type recordingInvoker struct {
	mu       sync.Mutex
	requests []bin.Encoder
}

func (i *recordingInvoker) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.requests = append(i.requests, input)
	return nil
}

func (i *recordingInvoker) sentMessages() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	var texts []string
	for _, req := range i.requests {
		if send, ok := req.(*tg.MessagesSendMessageRequest); ok {
			texts = append(texts, send.Message)
		}
	}
	return texts
}

func (i *recordingInvoker) lastSent() string {
	msgs := i.sentMessages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// stubGateway counts calendar calls made on behalf of handled updates
type stubGateway struct {
	mu        sync.Mutex
	events    []gcal.Event
	listCalls int
	inserted  []gcal.EventInput
}

func (g *stubGateway) ListUpcoming(ctx context.Context, from time.Time, maxResults int64) ([]gcal.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	return append([]gcal.Event{}, g.events...), nil
}

func (g *stubGateway) Insert(ctx context.Context, input gcal.EventInput) (*gcal.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inserted = append(g.inserted, input)
	return &gcal.Event{ID: "created-1", Summary: input.Summary, StartTime: input.StartTime}, nil
}

func (g *stubGateway) Delete(ctx context.Context, eventID string) error {
	return nil
}

func (g *stubGateway) listCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listCalls
}

func (g *stubGateway) insertCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inserted)
}

// stubExtractor returns a fixed field bag
type stubExtractor struct {
	fields map[string]string
}

func (e *stubExtractor) Extract(ctx context.Context, text string, referenceDate time.Time) (map[string]string, error) {
	return e.fields, nil
}

func newTestHandler() (*Handler, *stubGateway, *recordingInvoker) {
	gw := &stubGateway{}
	ex := &stubExtractor{fields: map[string]string{
		"title": "Shoot",
		"date":  "2025-05-01",
		"time":  "14:00:00",
	}}

	orchestrator := schedule.New(gw, ex, intent.NewValidator("Other"), schedule.Config{
		ExcludeSubstring: "happy birthday",
		Location:         time.FixedZone("WIB", 7*60*60),
	})

	h := NewHandler(orchestrator)
	inv := &recordingInvoker{}
	h.SetAPI(tg.NewClient(inv))
	return h, gw, inv
}

func newMessageUpdate(userID int64, text string) *tg.Updates {
	return &tg.Updates{
		Users: []tg.UserClass{&tg.User{ID: userID, AccessHash: 99}},
		Updates: []tg.UpdateClass{
			&tg.UpdateNewMessage{Message: &tg.Message{
				Message: text,
				PeerID:  &tg.PeerUser{UserID: userID},
			}},
		},
	}
}

func TestHandleUpdate_ShortMessageReachesOrchestrator(t *testing.T) {
	h, gw, _ := newTestHandler()
	ctx := context.Background()

	// The same command must behave identically whether the server delivers
	// it as a full update with entities or as a short update without them.
	h.HandleUpdate(ctx, newMessageUpdate(7, "/schedule"))
	require.Equal(t, 1, gw.listCount())

	h.HandleUpdate(ctx, &tg.UpdateShortMessage{UserID: 7, Message: "/schedule"})
	assert.Equal(t, 2, gw.listCount())
}

func TestHandleUpdate_ShortMessageFromUncachedUser(t *testing.T) {
	h, gw, inv := newTestHandler()

	// No prior update has populated the entity cache for this user.
	h.HandleUpdate(context.Background(), &tg.UpdateShortMessage{UserID: 42, Message: "/schedule"})

	assert.Equal(t, 1, gw.listCount())
	assert.NotEmpty(t, inv.sentMessages())
}

func TestHandleUpdate_OutgoingShortMessageIgnored(t *testing.T) {
	h, gw, inv := newTestHandler()

	h.HandleUpdate(context.Background(), &tg.UpdateShortMessage{UserID: 7, Message: "/schedule", Out: true})

	assert.Equal(t, 0, gw.listCount())
	assert.Empty(t, inv.sentMessages())
}

func TestCommandRouting(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantList    int
		wantInsert  int
		wantInReply string
	}{
		{
			name:        "command token with trailing words",
			text:        "/schedule please",
			wantList:    1,
			wantInReply: "No upcoming events",
		},
		{
			name:     "command with bot mention suffix",
			text:     "/delete@schedbot",
			wantList: 1,
		},
		{
			name:        "unknown command sharing a known prefix",
			text:        "/deleted stuff",
			wantInReply: "Unknown command",
		},
		{
			name:        "free text goes to event creation",
			text:        "shoot on may 1st at 2pm",
			wantInsert:  1,
			wantInReply: "Saved!",
		},
		{
			name:        "start shows help",
			text:        "/start",
			wantInReply: "/deleteall",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, gw, inv := newTestHandler()

			h.HandleUpdate(context.Background(), newMessageUpdate(7, tt.text))

			assert.Equal(t, tt.wantList, gw.listCount())
			assert.Equal(t, tt.wantInsert, gw.insertCount())
			if tt.wantInReply != "" {
				assert.Contains(t, inv.lastSent(), tt.wantInReply)
			}
		})
	}
}

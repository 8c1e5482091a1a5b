package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gotd/td/tg"

	"github.com/danharahap/schedbot/internal/schedule"
)

const helpText = `Hi! I'm your scheduling bot.
Send me a message like "photo shoot at the harbor tomorrow at 2pm" and I'll put it on your calendar.

Commands:
/schedule - Show your upcoming schedule
/delete - Delete a specific event
/deleteall - Delete all upcoming events`

// Handler routes incoming Telegram updates to the orchestrator
type Handler struct {
	orchestrator *schedule.Orchestrator

	mu    sync.RWMutex
	api   *tg.Client
	users map[int64]*tg.User // cache of user info with access hashes
}

// NewHandler creates a new Telegram update handler
func NewHandler(orchestrator *schedule.Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		users:        make(map[int64]*tg.User),
	}
}

// SetAPI hands the handler the raw API client once the connection is up.
func (h *Handler) SetAPI(api *tg.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.api = api
}

// HandleUpdate processes a Telegram update
func (h *Handler) HandleUpdate(ctx context.Context, update tg.UpdatesClass) {
	switch u := update.(type) {
	case *tg.Updates:
		h.cacheEntities(u.Users)
		for _, upd := range u.Updates {
			h.handleSingleUpdate(ctx, upd)
		}
	case *tg.UpdatesCombined:
		h.cacheEntities(u.Users)
		for _, upd := range u.Updates {
			h.handleSingleUpdate(ctx, upd)
		}
	case *tg.UpdateShort:
		h.handleSingleUpdate(ctx, u.Update)
	case *tg.UpdateShortMessage:
		h.handleShortMessage(ctx, u)
	}
}

// cacheEntities caches user information
func (h *Handler) cacheEntities(users []tg.UserClass) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			h.users[user.ID] = user
		}
	}
}

// handleSingleUpdate processes a single update
func (h *Handler) handleSingleUpdate(ctx context.Context, update tg.UpdateClass) {
	switch u := update.(type) {
	case *tg.UpdateNewMessage:
		h.handleNewMessage(ctx, u.Message)
	case *tg.UpdateBotCallbackQuery:
		h.handleCallback(ctx, u)
	}
}

// handleNewMessage processes an inbound direct message
func (h *Handler) handleNewMessage(ctx context.Context, msg tg.MessageClass) {
	message, ok := msg.(*tg.Message)
	if !ok || message.Out {
		return
	}

	// Direct messages from users only; groups and channels are ignored.
	peer, ok := message.PeerID.(*tg.PeerUser)
	if !ok {
		return
	}

	h.dispatchText(ctx, peer.UserID, message.Message)
}

// handleShortMessage processes a direct message the server delivered as a
// short update without entities.
func (h *Handler) handleShortMessage(ctx context.Context, u *tg.UpdateShortMessage) {
	if u.Out {
		return
	}
	h.dispatchText(ctx, u.UserID, u.Message)
}

// dispatchText routes one inbound text to the orchestrator: commands by
// their first token, everything else to the scheduling pipeline.
func (h *Handler) dispatchText(ctx context.Context, userID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	r, ok := h.responderFor(userID, 0)
	if !ok {
		fmt.Printf("Telegram: client not ready, dropping message from user %d\n", userID)
		return
	}

	fmt.Printf("[Telegram DM %d] %s\n", userID, truncate(text, 100))

	var err error
	switch command(text) {
	case "/start":
		err = r.Reply(ctx, helpText)
	case "/schedule":
		err = h.orchestrator.ReadSchedule(ctx, r)
	case "/deleteall":
		err = h.orchestrator.RequestDeleteAll(ctx, userID, r)
	case "/delete":
		err = h.orchestrator.ListDeletable(ctx, r)
	default:
		if strings.HasPrefix(text, "/") {
			err = r.Reply(ctx, "Unknown command. Send /start to see what I can do.")
		} else {
			err = h.orchestrator.CreateEvent(ctx, r, text)
		}
	}
	if err != nil {
		fmt.Printf("Telegram: error handling message from %d: %v\n", userID, err)
	}
}

// command returns the first whitespace-delimited token with any @botname
// suffix stripped, or "" when the text is not a command.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	token := strings.Fields(text)[0]
	if i := strings.Index(token, "@"); i >= 0 {
		token = token[:i]
	}
	return token
}

// handleCallback processes an inline keyboard button press
func (h *Handler) handleCallback(ctx context.Context, query *tg.UpdateBotCallbackQuery) {
	// Acknowledge the button press so the client stops its spinner.
	h.answerCallback(ctx, query.QueryID)

	action, err := schedule.ParseAction(string(query.Data))
	if err != nil {
		fmt.Printf("Telegram: ignoring callback: %v\n", err)
		return
	}

	r, ok := h.responderFor(query.UserID, query.MsgID)
	if !ok {
		fmt.Printf("Telegram: client not ready, dropping callback from user %d\n", query.UserID)
		return
	}

	if err := h.orchestrator.HandleAction(ctx, query.UserID, r, action); err != nil {
		fmt.Printf("Telegram: error handling callback from %d: %v\n", query.UserID, err)
	}
}

func (h *Handler) answerCallback(ctx context.Context, queryID int64) {
	h.mu.RLock()
	api := h.api
	h.mu.RUnlock()
	if api == nil {
		return
	}

	_, err := api.MessagesSetBotCallbackAnswer(ctx, &tg.MessagesSetBotCallbackAnswerRequest{
		QueryID: queryID,
	})
	if err != nil {
		fmt.Printf("Telegram: failed to answer callback: %v\n", err)
	}
}

// responderFor builds a responder bound to the user's peer. editMsgID is
// the message a callback may edit in place; zero for plain messages.
// Short updates carry no entities, so the cache can miss; a bot can still
// address a user it has a dialog with, so fall back to a zero access hash
// instead of dropping the message.
func (h *Handler) responderFor(userID int64, editMsgID int) (*responder, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.api == nil {
		return nil, false
	}

	peer := &tg.InputPeerUser{UserID: userID}
	if user, ok := h.users[userID]; ok {
		peer.AccessHash = user.AccessHash
	}

	return &responder{
		api:       h.api,
		peer:      peer,
		editMsgID: editMsgID,
	}, true
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

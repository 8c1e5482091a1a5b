package telegram

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/gotd/td/tg"

	"github.com/danharahap/schedbot/internal/schedule"
)

// responder implements schedule.Responder for one Telegram interaction.
type responder struct {
	api       *tg.Client
	peer      tg.InputPeerClass
	editMsgID int
}

// Reply sends a plain text message to the peer.
func (r *responder) Reply(ctx context.Context, text string) error {
	_, err := r.api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     r.peer,
		Message:  text,
		RandomID: rand.Int63(),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// PresentChoices sends a prompt with one inline callback button per choice,
// one button per row.
func (r *responder) PresentChoices(ctx context.Context, prompt string, choices []schedule.Choice) error {
	rows := make([]tg.KeyboardButtonRow, 0, len(choices))
	for _, choice := range choices {
		rows = append(rows, tg.KeyboardButtonRow{
			Buttons: []tg.KeyboardButtonClass{
				&tg.KeyboardButtonCallback{
					Text: choice.Label,
					Data: []byte(choice.Action.Encode()),
				},
			},
		})
	}

	req := &tg.MessagesSendMessageRequest{
		Peer:     r.peer,
		Message:  prompt,
		RandomID: rand.Int63(),
	}
	req.SetReplyMarkup(&tg.ReplyInlineMarkup{Rows: rows})

	if _, err := r.api.MessagesSendMessage(ctx, req); err != nil {
		return fmt.Errorf("failed to send choices: %w", err)
	}
	return nil
}

// EditMessage rewrites the message the current callback originated from,
// dropping its keyboard. Falls back to a plain reply when there is no
// editable message in this interaction.
func (r *responder) EditMessage(ctx context.Context, text string) error {
	if r.editMsgID == 0 {
		return r.Reply(ctx, text)
	}

	req := &tg.MessagesEditMessageRequest{
		Peer: r.peer,
		ID:   r.editMsgID,
	}
	req.SetMessage(text)

	if _, err := r.api.MessagesEditMessage(ctx, req); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

package ws

import (
	"github.com/unilinkhq/messaging-backend/internal/apperr"
)

// MessageSubscribe opens the live channel for one conversation. Subscribing
// twice is a no-op; the ack always reflects the current typing set so a
// reconnecting client starts from a consistent view.
type MessageSubscribe struct {
	ConversationID uint `json:"conversation_id"`
}

func (msg *MessageSubscribe) GetType() string {
	return "subscribe"
}

func (msg *MessageSubscribe) Process(ctx *MessageContext) error {
	ok, err := ctx.ConversationService.IsParticipant(msg.ConversationID, ctx.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}

	if err := ctx.Hub.Subscribe(ctx.UserID, msg.ConversationID); err != nil {
		return err
	}

	return ctx.Conn.WriteJSON(Event{
		Type: "subscribed",
		Payload: map[string]interface{}{
			"conversation_id": msg.ConversationID,
			"typing_users":    ctx.Hub.TypingUsers(msg.ConversationID),
		},
	})
}

// MessageUnsubscribe closes the live channel; safe when not subscribed.
type MessageUnsubscribe struct {
	ConversationID uint `json:"conversation_id"`
}

func (msg *MessageUnsubscribe) GetType() string {
	return "unsubscribe"
}

func (msg *MessageUnsubscribe) Process(ctx *MessageContext) error {
	ctx.Hub.Unsubscribe(ctx.UserID, msg.ConversationID)
	return nil
}

package ws

import (
	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/service"
)

// MessageChat sends a message over the socket. Same semantics as the REST
// send: validation first, then the transactional insert, then fan-out.
type MessageChat struct {
	ConversationID uint               `json:"conversation_id"`
	ClientID       string             `json:"client_id"`
	Content        string             `json:"content"`
	MessageType    models.MessageType `json:"message_type"`
	File           *models.FileRef    `json:"file"`
}

func (msg *MessageChat) GetType() string {
	return "chat"
}

func (msg *MessageChat) Process(ctx *MessageContext) error {
	stored, err := ctx.MessageService.SendMessage(ctx.UserID, service.SendMessageInput{
		ConversationID: msg.ConversationID,
		ClientID:       msg.ClientID,
		Content:        msg.Content,
		MessageType:    msg.MessageType,
		File:           msg.File,
	})
	if err != nil {
		return err
	}

	// Sending ends the typing lease.
	ctx.Hub.ClearTyping(msg.ConversationID, ctx.UserID)

	ctx.Hub.PublishMessage(stored.ConversationID, stored.ID)
	if ctx.ListService != nil {
		ctx.ListService.InvalidateFor(stored.ConversationID)
	}

	return ctx.Conn.WriteJSON(Event{Type: "sent", Payload: stored.ToResponse()})
}

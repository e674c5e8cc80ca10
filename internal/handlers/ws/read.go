package ws

// MessageRead marks the conversation read for the sender (unread count back
// to zero). Idempotent.
type MessageRead struct {
	ConversationID uint `json:"conversation_id"`
}

func (msg *MessageRead) GetType() string {
	return "read"
}

func (msg *MessageRead) Process(ctx *MessageContext) error {
	if err := ctx.MessageService.MarkRead(msg.ConversationID, ctx.UserID); err != nil {
		return err
	}
	if ctx.ListService != nil {
		ctx.ListService.InvalidateFor(msg.ConversationID)
	}
	return ctx.Conn.WriteJSON(Event{
		Type: "read_ack",
		Payload: map[string]interface{}{
			"conversation_id": msg.ConversationID,
		},
	})
}

package ws

// MessageSync requests everything newer than the last message the client
// saw, closing the gap after a dropped connection. The client merges the
// result with anything pushed meanwhile by message id.
type MessageSync struct {
	ConversationID uint `json:"conversation_id"`
	LastMessageID  uint `json:"last_message_id"`
	Limit          int  `json:"limit"`
}

func (msg *MessageSync) GetType() string {
	return "sync"
}

func (msg *MessageSync) Process(ctx *MessageContext) error {
	ok, err := ctx.ConversationService.IsParticipant(msg.ConversationID, ctx.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	messages, err := ctx.MessageService.GetMessagesSince(msg.ConversationID, msg.LastMessageID, msg.Limit)
	if err != nil {
		return err
	}

	payload := make([]interface{}, len(messages))
	for i, m := range messages {
		payload[i] = m.ToResponse()
	}
	return ctx.Conn.WriteJSON(Event{
		Type: "sync",
		Payload: map[string]interface{}{
			"conversation_id": msg.ConversationID,
			"messages":        payload,
			"count":           len(messages),
		},
	})
}

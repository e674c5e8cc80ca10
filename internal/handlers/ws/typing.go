package ws

// MessageTyping broadcasts the sender's typing state to the conversation's
// subscribers. The state is a 3s lease refreshed on every keystroke event;
// is_typing=false ends it early.
type MessageTyping struct {
	ConversationID uint `json:"conversation_id"`
	IsTyping       bool `json:"is_typing"`
}

func (msg *MessageTyping) GetType() string {
	return "typing"
}

func (msg *MessageTyping) Process(ctx *MessageContext) error {
	// Only subscribers may broadcast typing; this also covers membership
	// since subscribe checks it.
	if !ctx.Hub.IsSubscribed(ctx.UserID, msg.ConversationID) {
		return nil
	}
	if msg.IsTyping {
		ctx.Hub.SetTyping(msg.ConversationID, ctx.UserID)
		// Cross-instance hint only; the TTL expires it on its own.
		_ = ctx.Presence.SetTyping(msg.ConversationID, ctx.UserID)
	} else {
		ctx.Hub.ClearTyping(msg.ConversationID, ctx.UserID)
		_ = ctx.Presence.ClearTyping(msg.ConversationID, ctx.UserID)
	}
	return nil
}

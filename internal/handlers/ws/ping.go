package ws

// MessagePing is the application-level keepalive. Answering immediately lets
// clients detect a stalled socket without waiting on control-frame timeouts.
type MessagePing struct{}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	return ctx.Conn.WriteJSON(Event{Type: "pong"})
}

// MessagePong acknowledges a server ping. The read deadline reset happens in
// the connection's pong handler, so there is nothing left to do here.
type MessagePong struct{}

func (msg *MessagePong) GetType() string {
	return "pong"
}

func (msg *MessagePong) Process(ctx *MessageContext) error {
	return nil
}

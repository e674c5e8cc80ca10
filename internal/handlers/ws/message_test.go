package ws

import (
	"testing"
)

func TestTypeRegistryCoversProtocol(t *testing.T) {
	registry := GetTypeRegistry()
	wantTypes := []string{"subscribe", "unsubscribe", "chat", "typing", "read", "sync", "ping", "pong"}

	for _, msgType := range wantTypes {
		if _, ok := registry[msgType]; !ok {
			t.Errorf("type %q not registered", msgType)
		}
	}
	if len(registry) != len(wantTypes) {
		t.Errorf("registry has %d types, want %d", len(registry), len(wantTypes))
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := &MessageChat{
		ConversationID: 12,
		ClientID:       "c-abc",
		Content:        "see you at the library",
	}

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	chat, ok := decoded.(*MessageChat)
	if !ok {
		t.Fatalf("decoded type: %T", decoded)
	}
	if chat.ConversationID != 12 || chat.ClientID != "c-abc" || chat.Content != original.Content {
		t.Errorf("round trip lost fields: %+v", chat)
	}
}

func TestDeserializeRejectsUnknownType(t *testing.T) {
	payload := []byte(`{"type":"selfdestruct","payload":{}}`)
	if _, err := Deserialize(payload); err == nil {
		t.Error("unknown type should fail")
	}
}

func TestDeserializeRejectsMalformedJSON(t *testing.T) {
	if _, err := Deserialize([]byte(`{"type":`)); err == nil {
		t.Error("malformed wrapper should fail")
	}
	if _, err := Deserialize([]byte(`{"type":"typing","payload":"not-an-object"}`)); err == nil {
		t.Error("malformed payload should fail")
	}
}

func TestPingAnswersPong(t *testing.T) {
	conn := &fakeConn{}
	if err := (&MessagePing{}).Process(&MessageContext{Conn: conn}); err != nil {
		t.Fatalf("ping: %v", err)
	}
	event, ok := conn.lastWrite().(Event)
	if !ok {
		t.Fatalf("written type: %T", conn.lastWrite())
	}
	if event.Type != "pong" {
		t.Errorf("reply type: got %q, want %q", event.Type, "pong")
	}

	// Pong is a pure acknowledgement.
	if err := (&MessagePong{}).Process(&MessageContext{}); err != nil {
		t.Errorf("pong: %v", err)
	}
}

func TestSendError(t *testing.T) {
	conn := &fakeConn{}
	if err := SendError(conn, "invalid_message", "Invalid message format", "missing type"); err != nil {
		t.Fatalf("send error: %v", err)
	}

	resp, ok := conn.lastWrite().(ErrorResponse)
	if !ok {
		t.Fatalf("written type: %T", conn.lastWrite())
	}
	if resp.Type != "error" || resp.Code != "invalid_message" {
		t.Errorf("error envelope: %+v", resp)
	}
	if resp.Error != "Invalid message format" || resp.Details != "missing type" {
		t.Errorf("error text: %+v", resp)
	}
}

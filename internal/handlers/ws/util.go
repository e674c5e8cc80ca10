package ws

import "encoding/json"

// Serialize wraps a client message in the typed {type, payload} envelope used
// on the wire. The envelope matches what Event uses for server pushes, so
// both directions share one frame shape.
func Serialize(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{Type: msg.GetType(), Payload: payload})
}

// Deserialize decodes an inbound frame into its registered message type.
// Unknown types and malformed payloads both fail here, before any handler
// runs.
func Deserialize(data []byte) (Message, error) {
	var frame SerializedMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	msg, err := CreateMessage(frame.Type, typeRegistry)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(frame.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

package websocket

import (
	"chat-relay/domain/event"
	"encoding/json"
)

// Envelope frames every message on the wire, both directions:
// {"event": "<name>", "data": <payload>}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinRoomPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type MessageInPayload struct {
	Room    string `json:"room"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// EncodeEvent renders one outbound domain event as a wire envelope.
func EncodeEvent(evt event.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(evt.Payload())
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: evt.EventName(), Data: data})
}

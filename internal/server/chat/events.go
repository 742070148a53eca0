package chat

import (
	"encoding/json"
	"strings"
)

// Event names carried in Frame.Event.
const (
	EventExistingMessages = "existingMessages"
	EventChatMessage      = "chatMessage"
	EventMessage          = "message"
)

// Frame is the envelope of every websocket text message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ChatMessageData is the payload a client sends with EventChatMessage.
type ChatMessageData struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// decodeChatMessage extracts a chat line from a raw client frame. ok is false
// for malformed frames and for any event other than EventChatMessage.
func decodeChatMessage(raw []byte) (msg Message, ok bool) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil || f.Event != EventChatMessage {
		return Message{}, false
	}

	var data ChatMessageData
	if err := json.Unmarshal(f.Data, &data); err != nil {
		return Message{}, false
	}
	if strings.TrimSpace(data.Message) == "" {
		return Message{}, false
	}

	return Message{User: data.User, Content: data.Message}, true
}

// isExpectedCloseError reports errors that only mean the peer already left.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "use of closed network connection") ||
		strings.Contains(s, "websocket: close sent") ||
		strings.Contains(s, "broken pipe")
}

package realtime

import "encoding/json"

// Event types pushed to clients.
const (
	EventNewMessage      = "new_message"
	EventNewNotification = "new_notification"
	EventMessageSent     = "message_sent"
	EventAuthOK          = "auth_ok"
	EventError           = "error"
)

// Event is a server-to-client frame.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

package models

import "encoding/json"

// Inbound and outbound realtime frames share this envelope.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

const (
	EventNotification         = "notification"
	EventNotificationRead     = "notification_read"
	EventNotificationsCleared = "notifications_cleared"
	EventPing                 = "ping"
	EventWildcard             = "*"
)

// ConnectionState of a realtime channel.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

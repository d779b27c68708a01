package slack

import "encoding/json"

// MessageEvent is the subset of the Slack events payload the bot consumes.
type MessageEvent struct {
	Type     string `json:"type"`
	User     string `json:"user"`
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
	Subtype  string `json:"subtype,omitempty"`
}

// envelope is the Socket Mode frame wrapper. Every events_api envelope must be
// acked with its envelope_id or Slack redelivers it.
type envelope struct {
	EnvelopeID string          `json:"envelope_id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
}

type eventsAPIPayload struct {
	Event MessageEvent `json:"event"`
}

type ack struct {
	EnvelopeID string `json:"envelope_id"`
}

type SocketState int

const (
	SocketDisconnected SocketState = iota
	SocketConnecting
	SocketConnected
	SocketReconnecting
	SocketFailed
)

func (s SocketState) String() string {
	switch s {
	case SocketDisconnected:
		return "disconnected"
	case SocketConnecting:
		return "connecting"
	case SocketConnected:
		return "connected"
	case SocketReconnecting:
		return "reconnecting"
	case SocketFailed:
		return "failed"
	default:
		return "unknown"
	}
}

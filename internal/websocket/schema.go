package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionEvent Action = "event"
	ActionPing  Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// EventRequest is sent by the client to report a telemetry event.
type EventRequest struct {
	Action    Action            `json:"action"`
	Attempt   *int              `json:"attempt,omitempty"`
	EventType string            `json:"event_type"`
	CreatedAt string            `json:"created_at"` // RFC3339
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventAccepted Event = "accepted"
	EventPong     Event = "pong"
)

type AcceptedResponse struct {
	Event Event `json:"event"`
	Count int   `json:"count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

package server

// Event types pushed to connected GUI clients.
const (
	EventTypeFSChange = "fs-change"
	EventTypeSystem   = "system"
	EventTypeError    = "error"
)

// EventMessage is the envelope for everything sent over the WebSocket.
type EventMessage struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

package broadcast

import (
	"time"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// Message types for WebSocket communication
const (
	MessageTypeReportEvent = "report_event"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeSubscribed  = "subscribed"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage is a message from client to server. Sports is read on
// subscribe; an empty list receives every sport.
type ClientMessage struct {
	Type   string   `json:"type"`
	Sports []string `json:"sports,omitempty"`
}

// ServerMessage is a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Subscription is the acknowledged filter of a client
type Subscription struct {
	Sports []models.Sport `json:"sports"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

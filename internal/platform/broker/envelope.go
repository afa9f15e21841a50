package broker

import (
	"time"
)

// EventHeaderKey is the out-of-band header carrying the event type so routing
// filters can match without deserializing the value.
const EventHeaderKey = "event-type"

// Envelope is the versioned metadata wrapper persisted around every payload.
type Envelope struct {
	MessageID    string    `json:"messageId"`
	Timestamp    time.Time `json:"timestamp"`
	EventType    string    `json:"eventType"`
	EventVersion int       `json:"eventVersion"`
	Source       string    `json:"source"`
	TenantID     *string   `json:"tenantId"`
	Payload      any       `json:"payload"`
}

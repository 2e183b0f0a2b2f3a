package consumer

import (
	"time"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

// EventEnvelope is the Kafka record for a decoded node event.
type EventEnvelope struct {
	EventID    string    `json:"eventId"`
	ReceivedAt time.Time `json:"receivedAt"`
	Topic      string    `json:"topic"`
	GUID       string    `json:"guid"`
	Head       byte      `json:"head"`
	Class      uint16    `json:"class"`
	Type       uint16    `json:"type"`
	ObID       uint32    `json:"obid"`
	Timestamp  uint32    `json:"timestamp"`
	Data       []byte    `json:"data"`
	// Value is present for measurement payloads the collector can decode.
	Value *float64 `json:"value,omitempty"`
}

// DLQEnvelope wraps a message that failed to decode.
type DLQEnvelope struct {
	Error      string    `json:"error"`
	Topic      string    `json:"topic"`
	Original   []byte    `json:"original"`
	ReceivedAt time.Time `json:"receivedAt"`
}

func NewEnvelope(id, topic string, e vscp.Event, receivedAt time.Time) EventEnvelope {
	env := EventEnvelope{
		EventID:    id,
		ReceivedAt: receivedAt,
		Topic:      topic,
		GUID:       e.GUID.String(),
		Head:       e.Head,
		Class:      e.Class,
		Type:       e.Type,
		ObID:       e.ObID,
		Timestamp:  e.Timestamp,
		Data:       e.Data,
	}
	if v, ok := vscp.DecodeValue(e.Data); ok {
		env.Value = &v
	}
	return env
}

package consumer

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/broker"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/config"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/database"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

// HandleMessage processes one MQTT message: decode, forward to Kafka keyed
// by GUID, and write measurement values to Influx. Undecodable messages go
// to the DLQ wrapped in an error envelope.
func HandleMessage(ctx context.Context, cfg *config.Collector, prod *broker.KafkaProducer, db *database.InfluxDB, msg mqtt.Message) {
	receivedAt := time.Now().UTC()
	payload := msg.Payload()

	cfg.Logger.Printf("[mqtt] rx topic=%s qos=%d bytes=%d payload=%s",
		msg.Topic(), msg.Qos(), len(payload), Truncate(payload, 256))

	e, err := Decode(cfg.MQTTNamespace, msg.Topic(), payload)
	if err != nil {
		cfg.Logger.Printf("[consumer] undecodable message, sending to DLQ: %v", err)
		buf, _ := json.Marshal(DLQEnvelope{
			Error:      err.Error(),
			Topic:      msg.Topic(),
			Original:   payload,
			ReceivedAt: receivedAt,
		})
		if err := prod.SendDLQ(ctx, []byte("invalid"), buf); err != nil {
			cfg.Logger.Printf("[kafka] dlq write error: %v", err)
		}
		return
	}

	env := NewEnvelope(uuid.NewString(), msg.Topic(), e, receivedAt)
	buf, _ := json.Marshal(env)
	if err := prod.Send(ctx, []byte(env.GUID), buf, kafka.Header{
		Key:   "receivedAt",
		Value: []byte(receivedAt.Format(time.RFC3339Nano)),
	}); err != nil {
		cfg.Logger.Printf("[kafka] write error: %v", err)
		return
	}

	if env.Value != nil && isMeasurement(e) {
		if err := db.WriteMeasurement(ctx, e, *env.Value, receivedAt); err != nil {
			cfg.Logger.Printf("[influx] write error: %v", err)
		}
	}
}

func isMeasurement(e vscp.Event) bool {
	return e.Class == vscp.ClassMeasurement || e.Class == vscp.ClassData
}

func Truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Package broker is the collector's downstream side: a Kafka producer with a
// main topic for decoded node events and a DLQ for everything that failed to
// decode.
package broker

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/config"
)

type KafkaProducer struct {
	main *kafka.Writer
	dlq  *kafka.Writer
}

func NewKafkaProducer(cfg *config.Collector) *KafkaProducer {
	balancer := &kafka.Hash{}

	main := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.KafkaTopic,
		Balancer: balancer,

		BatchSize:    cfg.KafkaBatchSize,
		BatchBytes:   cfg.KafkaBatchBytes,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeoutMs) * time.Millisecond,

		RequiredAcks: requiredAcks(cfg.KafkaRequiredAcks),
		MaxAttempts:  cfg.KafkaMaxAttempts,
		Async:        true,
		Compression:  compression(cfg.KafkaCompression),
	}

	dlq := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.KafkaDLQTopic,
		Balancer: balancer,

		BatchSize:    200,
		BatchBytes:   512 << 10,
		BatchTimeout: 10 * time.Millisecond,

		RequiredAcks: requiredAcks(cfg.KafkaRequiredAcks),
		MaxAttempts:  cfg.KafkaMaxAttempts,
		Async:        true,
		Compression:  compression(cfg.KafkaCompression),
	}

	return &KafkaProducer{main: main, dlq: dlq}
}

func (p *KafkaProducer) Close() {
	_ = p.main.Close()
	_ = p.dlq.Close()
}

func (p *KafkaProducer) Send(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	return p.main.WriteMessages(ctx, kafka.Message{Key: key, Value: value, Headers: headers})
}

func (p *KafkaProducer) SendDLQ(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	return p.dlq.WriteMessages(ctx, kafka.Message{Key: key, Value: value, Headers: headers})
}

func requiredAcks(s string) kafka.RequiredAcks {
	switch s {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func compression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	case "none":
		return 0
	default:
		return kafka.Snappy
	}
}

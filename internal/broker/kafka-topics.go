package broker

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/config"
)

// EnsureKafkaTopics creates the main and DLQ topics on the controller broker
// if they do not exist yet.
func EnsureKafkaTopics(ctx context.Context, cfg *config.Collector) error {
	bootstrap := cfg.KafkaBrokers[0]
	cfg.Logger.Printf("[kafka] ensuring topics on bootstrap %s", bootstrap)

	conn, err := kafka.DialContext(ctx, "tcp", bootstrap)
	if err != nil {
		return err
	}
	defer conn.Close()

	exists := func(topic string) bool {
		parts, err := conn.ReadPartitions(topic)
		return err == nil && len(parts) > 0
	}

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer ctrlConn.Close()

	create := func(topic string, partitions int) error {
		if exists(topic) {
			cfg.Logger.Printf("[kafka] topic %s already exists, skipping", topic)
			return nil
		}
		cfg.Logger.Printf("[kafka] creating topic %s (partitions=%d rf=%d)", topic, partitions, cfg.KafkaReplicationFactor)
		return ctrlConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: cfg.KafkaReplicationFactor,
			ConfigEntries: []kafka.ConfigEntry{
				{ConfigName: "compression.type", ConfigValue: cfg.KafkaCompression},
				{ConfigName: "retention.ms", ConfigValue: fmt.Sprintf("%d", cfg.KafkaRetentionMs)},
			},
		})
	}

	if err := create(cfg.KafkaTopic, cfg.KafkaTopicPartitions); err != nil {
		return err
	}
	return create(cfg.KafkaDLQTopic, cfg.KafkaDLQPartitions)
}

package config

import "log"

// Collector is the consumer-side configuration.
type Collector struct {
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTUsername  string
	MQTTPassword  string
	MQTTNamespace string
	MQTTQoS       byte

	KafkaBrokers           []string
	KafkaTopic             string
	KafkaDLQTopic          string
	KafkaTopicPartitions   int
	KafkaDLQPartitions     int
	KafkaReplicationFactor int
	KafkaBatchSize         int
	KafkaBatchBytes        int64
	KafkaBatchTimeoutMs    int
	KafkaCompression       string
	KafkaRequiredAcks      string
	KafkaMaxAttempts       int
	KafkaRetentionMs       int64

	// InfluxURL empty disables the measurement sink.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	Logger *log.Logger
}

func LoadCollector(logger *log.Logger) (*Collector, error) {
	var errs errList

	comp := getenv("KAFKA_COMPRESSION", "snappy")
	acks := getenv("KAFKA_REQUIRED_ACKS", "one")
	ensureOneOf("KAFKA_COMPRESSION", comp, []string{"none", "gzip", "snappy", "lz4", "zstd"}, &errs)
	ensureOneOf("KAFKA_REQUIRED_ACKS", acks, []string{"none", "one", "all"}, &errs)

	c := &Collector{
		MQTTBrokerURL: getRequired("MQTT_BROKER_URL", &errs),
		MQTTClientID:  getenv("MQTT_CLIENT_ID", "vscp-collector"),
		MQTTUsername:  getenv("MQTT_USERNAME", ""),
		MQTTPassword:  getenv("MQTT_PASSWORD", ""),
		MQTTNamespace: getenv("MQTT_NAMESPACE", "vscp"),
		MQTTQoS:       getQoS("MQTT_QOS", 1, &errs),

		KafkaBrokers:           splitList(getRequired("KAFKA_BROKERS", &errs)),
		KafkaTopic:             getenv("KAFKA_TOPIC", "vscp-events"),
		KafkaDLQTopic:          getenv("KAFKA_DLQ_TOPIC", "vscp-events-dlq"),
		KafkaTopicPartitions:   getInt("KAFKA_TOPIC_PARTITIONS", 3, &errs),
		KafkaDLQPartitions:     getInt("KAFKA_DLQ_PARTITIONS", 1, &errs),
		KafkaReplicationFactor: getInt("KAFKA_REPLICATION_FACTOR", 1, &errs),
		KafkaBatchSize:         getInt("KAFKA_BATCH_SIZE", 1000, &errs),
		KafkaBatchBytes:        getInt64("KAFKA_BATCH_BYTES", 1<<20, &errs),
		KafkaBatchTimeoutMs:    getInt("KAFKA_BATCH_TIMEOUT_MS", 5, &errs),
		KafkaCompression:       comp,
		KafkaRequiredAcks:      acks,
		KafkaMaxAttempts:       getInt("KAFKA_MAX_ATTEMPTS", 10, &errs),
		KafkaRetentionMs:       getInt64("KAFKA_RETENTION_MS", 7*24*3600*1000, &errs),

		InfluxURL:    getenv("INFLUX_URL", ""),
		InfluxToken:  getenv("INFLUX_TOKEN", ""),
		InfluxOrg:    getenv("INFLUX_ORG", ""),
		InfluxBucket: getenv("INFLUX_BUCKET", ""),

		Logger: logger,
	}

	if c.InfluxURL != "" {
		if c.InfluxToken == "" {
			errs.addf("missing INFLUX_TOKEN (required when INFLUX_URL is set)")
		}
		if c.InfluxOrg == "" {
			errs.addf("missing INFLUX_ORG (required when INFLUX_URL is set)")
		}
		if c.InfluxBucket == "" {
			errs.addf("missing INFLUX_BUCKET (required when INFLUX_URL is set)")
		}
	}
	if c.KafkaReplicationFactor > len(c.KafkaBrokers) && len(c.KafkaBrokers) > 0 {
		errs.addf("KAFKA_REPLICATION_FACTOR cannot exceed the broker count")
	}

	if errs.has() {
		return nil, errs.fatal(logger, "collector")
	}
	return c, nil
}

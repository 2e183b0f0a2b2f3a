package consumer

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/broker"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/config"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/database"
)

// BuildMQTTClient configures the long-lived subscription over the node
// topic space. Unlike the node's one-shot session, the collector keeps
// reconnecting for as long as it runs.
func BuildMQTTClient(cfg *config.Collector, prod *broker.KafkaProducer, db *database.InfluxDB) mqtt.Client {
	h := func(_ mqtt.Client, msg mqtt.Message) {
		HandleMessage(context.Background(), cfg, prod, db, msg)
	}

	filter := cfg.MQTTNamespace + "/+/+/+"

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(cfg.MQTTClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
	}
	if cfg.MQTTPassword != "" {
		opts.SetPassword(cfg.MQTTPassword)
	}

	opts.OnConnect = func(c mqtt.Client) {
		cfg.Logger.Printf("[mqtt] connected to %s", cfg.MQTTBrokerURL)
		if token := c.Subscribe(filter, cfg.MQTTQoS, h); token.Wait() && token.Error() != nil {
			cfg.Logger.Printf("[mqtt] subscribe error: %v", token.Error())
		} else {
			cfg.Logger.Printf("[mqtt] subscribed to %s (QoS %d)", filter, cfg.MQTTQoS)
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		cfg.Logger.Printf("[mqtt] connection lost: %v", err)
	}

	return mqtt.NewClient(opts)
}

// ConnectWithBackoff retries the initial connect with exponential backoff
// until it succeeds or the context ends.
func ConnectWithBackoff(ctx context.Context, cfg *config.Collector, client mqtt.Client, start, max time.Duration) {
	backoff := start
	for {
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			cfg.Logger.Printf("[mqtt] connect error: %v; retrying in %s", token.Error(), backoff)
			select {
			case <-time.After(backoff):
				if backoff < max {
					backoff *= 2
				}
			case <-ctx.Done():
				cfg.Logger.Printf("[mqtt] context cancelled before connect")
				return
			}
			continue
		}
		return
	}
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

// MQTTOptions is the broker half of the node configuration.
type MQTTOptions struct {
	BrokerURL string
	Username  string
	Password  string
	Namespace string
	QoS       byte

	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// MQTT publishes events to <namespace>/<guid>/<class>/<type> with the text
// record as payload. The source GUID doubles as the client id.
type MQTT struct {
	opts   MQTTOptions
	logger *log.Logger
	client mqtt.Client
}

func NewMQTT(opts MQTTOptions, logger *log.Logger) *MQTT {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	return &MQTT{opts: opts, logger: logger}
}

func (m *MQTT) Name() string { return "mqtt" }

func (m *MQTT) Open(_ context.Context, source vscp.GUID) error {
	o := mqtt.NewClientOptions().
		AddBroker(m.opts.BrokerURL).
		SetClientID(source.String()).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(m.opts.ConnectTimeout).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second)

	if m.opts.Username != "" {
		o.SetUsername(m.opts.Username)
	}
	if m.opts.Password != "" {
		o.SetPassword(m.opts.Password)
	}

	client := mqtt.NewClient(o)
	t := client.Connect()
	if !t.WaitTimeout(m.opts.ConnectTimeout) {
		return fmt.Errorf("mqtt connect to %s timed out", m.opts.BrokerURL)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", m.opts.BrokerURL, err)
	}
	m.client = client
	m.logger.Printf("[mqtt] connected to %s as %s", m.opts.BrokerURL, source)
	return nil
}

func (m *MQTT) Send(_ context.Context, e vscp.Event) error {
	if m.client == nil {
		return errors.New("mqtt session not open")
	}
	topic := Topic(m.opts.Namespace, e)
	t := m.client.Publish(topic, m.opts.QoS, false, []byte(e.Record()))
	if !t.WaitTimeout(m.opts.PublishTimeout) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", topic, err)
	}
	return nil
}

func (m *MQTT) Close() error {
	if m.client == nil {
		return nil
	}
	m.client.Disconnect(250)
	m.client = nil
	return nil
}

// Topic builds the routing topic for an event.
func Topic(namespace string, e vscp.Event) string {
	return fmt.Sprintf("%s/%s/%d/%d", namespace, e.GUID, e.Class, e.Type)
}

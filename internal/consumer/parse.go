// Package consumer is the telemetry side the node reports to: it subscribes
// to the node topic space, decodes events, forwards them to Kafka and writes
// measurement values to InfluxDB.
package consumer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

// ParseTopic splits <namespace>/<guid>/<class>/<type> and cross-checks the
// record decoded from the payload against it.
func ParseTopic(namespace, topic string) (vscp.GUID, uint16, uint16, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != namespace {
		return vscp.GUID{}, 0, 0, fmt.Errorf("consumer: topic %q does not match %s/<guid>/<class>/<type>", topic, namespace)
	}
	guid, err := vscp.ParseGUID(parts[1])
	if err != nil {
		return vscp.GUID{}, 0, 0, fmt.Errorf("consumer: topic %q: %w", topic, err)
	}
	class, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return vscp.GUID{}, 0, 0, fmt.Errorf("consumer: topic %q: bad class: %w", topic, err)
	}
	typ, err := strconv.ParseUint(parts[3], 10, 16)
	if err != nil {
		return vscp.GUID{}, 0, 0, fmt.Errorf("consumer: topic %q: bad type: %w", topic, err)
	}
	return guid, uint16(class), uint16(typ), nil
}

// Decode turns an MQTT message into an event, requiring the payload record
// to agree with the topic routing fields.
func Decode(namespace, topic string, payload []byte) (vscp.Event, error) {
	guid, class, typ, err := ParseTopic(namespace, topic)
	if err != nil {
		return vscp.Event{}, err
	}
	e, err := vscp.ParseRecord(string(payload))
	if err != nil {
		return vscp.Event{}, err
	}
	if e.GUID != guid || e.Class != class || e.Type != typ {
		return vscp.Event{}, fmt.Errorf("consumer: payload (%s %d/%d) disagrees with topic %q",
			e.GUID, e.Class, e.Type, topic)
	}
	return e, nil
}

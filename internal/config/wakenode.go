package config

import (
	"log"
	"time"
)

// Node is the wake-node configuration, read once per power-up.
type Node struct {
	Iface    string
	HoldGPIO int
	Zone     byte
	SubZone  byte

	BatteryRawPath string
	BatteryScale   float64 // millivolts per ADC LSB
	BatteryDivider float64 // (R1+R2)/R2 of the sense divider

	LinkPollInterval time.Duration
	LinkTimeout      time.Duration // zero: wait forever
	GuardDelay       time.Duration
	PowerDownGrace   time.Duration

	// Transports is the active subset of {daemon, mqtt}. "none" yields an
	// empty set; the node still runs its cycle and powers down without
	// reporting.
	Transports []string

	DaemonHost     string
	DaemonPort     int
	DaemonUsername string
	DaemonPassword string

	MQTTBrokerURL string
	MQTTUsername  string
	MQTTPassword  string
	MQTTNamespace string
	MQTTQoS       byte

	Logger *log.Logger
}

func (n *Node) TransportEnabled(name string) bool {
	for _, t := range n.Transports {
		if t == name {
			return true
		}
	}
	return false
}

// LoadNode reads and validates the wake-node environment. Transport
// credentials are only required for transports that are actually enabled.
func LoadNode(logger *log.Logger) (*Node, error) {
	var errs errList

	transports := splitList(getenv("WAKENODE_TRANSPORTS", "mqtt"))
	if len(transports) == 1 && transports[0] == "none" {
		transports = nil
	}
	for _, t := range transports {
		ensureOneOf("WAKENODE_TRANSPORTS", t, []string{"daemon", "mqtt"}, &errs)
	}

	n := &Node{
		Iface:    getRequired("WAKENODE_IFACE", &errs),
		HoldGPIO: getInt("WAKENODE_HOLD_GPIO", -1, &errs),
		Zone:     byte(getInt("WAKENODE_ZONE", 0, &errs)),
		SubZone:  byte(getInt("WAKENODE_SUBZONE", 0, &errs)),

		BatteryRawPath: getenv("WAKENODE_BATTERY_IIO_PATH", ""),
		BatteryScale:   getFloat("WAKENODE_BATTERY_SCALE", 0.8, &errs),
		BatteryDivider: getFloat("WAKENODE_BATTERY_DIVIDER", 2.0, &errs),

		LinkPollInterval: time.Duration(getInt("WAKENODE_LINK_POLL_MS", 200, &errs)) * time.Millisecond,
		LinkTimeout:      time.Duration(getInt("WAKENODE_LINK_TIMEOUT_MS", 0, &errs)) * time.Millisecond,
		GuardDelay:       time.Duration(getInt("WAKENODE_GUARD_DELAY_MS", 3000, &errs)) * time.Millisecond,
		PowerDownGrace:   time.Duration(getInt("WAKENODE_POWERDOWN_GRACE_MS", 1000, &errs)) * time.Millisecond,

		Transports: transports,

		MQTTNamespace: getenv("MQTT_NAMESPACE", "vscp"),
		MQTTQoS:       getQoS("MQTT_QOS", 1, &errs),
		MQTTUsername:  getenv("MQTT_USERNAME", ""),
		MQTTPassword:  getenv("MQTT_PASSWORD", ""),

		Logger: logger,
	}

	if n.HoldGPIO < 0 {
		errs.addf("missing or invalid WAKENODE_HOLD_GPIO")
	}

	for _, t := range transports {
		switch t {
		case "daemon":
			n.DaemonHost = getRequired("VSCPD_HOST", &errs)
			n.DaemonPort = getInt("VSCPD_PORT", 9598, &errs)
			n.DaemonUsername = getRequired("VSCPD_USERNAME", &errs)
			n.DaemonPassword = getRequired("VSCPD_PASSWORD", &errs)
		case "mqtt":
			n.MQTTBrokerURL = getRequired("MQTT_BROKER_URL", &errs)
		}
	}

	if errs.has() {
		return nil, errs.fatal(logger, "wakenode")
	}
	return n, nil
}

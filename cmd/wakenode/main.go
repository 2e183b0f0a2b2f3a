package main

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/config"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/cycle"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/hal"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/transport"
)

func main() {
	var out io.Writer = os.Stdout
	if os.Getenv("WAKENODE_SILENT") == "1" {
		out = io.Discard
	}
	logger := log.New(out, "", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.LoadNode(logger)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	logger.Printf("[boot] wakenode | iface=%s gpio=%d transports=%s",
		cfg.Iface, cfg.HoldGPIO, strings.Join(cfg.Transports, ","))

	latch := &hal.SysfsLatch{Pin: cfg.HoldGPIO}
	link := &hal.WirelessLink{Iface: cfg.Iface}
	battery := &hal.IIOBattery{
		RawPath:    cfg.BatteryRawPath,
		ScaleMilli: cfg.BatteryScale,
		Divider:    cfg.BatteryDivider,
	}

	ctrl := cycle.New(cycle.Options{
		LinkPollInterval: cfg.LinkPollInterval,
		LinkTimeout:      cfg.LinkTimeout,
		GuardDelay:       cfg.GuardDelay,
		PowerDownGrace:   cfg.PowerDownGrace,
		Zone:             cfg.Zone,
		SubZone:          cfg.SubZone,
	}, latch, link, battery, buildTransports(cfg, logger), logger)

	ctrl.Run(context.Background())
}

// buildTransports instantiates the configured subset. Construction must not
// touch the hardware: the hold pin is asserted only once the cycle runs, and
// the transports learn the device GUID at Open, after that point.
func buildTransports(cfg *config.Node, logger *log.Logger) []transport.Transport {
	var out []transport.Transport
	if cfg.TransportEnabled("daemon") {
		out = append(out, transport.NewDaemon(transport.DaemonOptions{
			Host:      cfg.DaemonHost,
			Port:      cfg.DaemonPort,
			Username:  cfg.DaemonUsername,
			Password:  cfg.DaemonPassword,
			IOTimeout: 10 * time.Second,
		}, logger))
	}
	if cfg.TransportEnabled("mqtt") {
		out = append(out, transport.NewMQTT(transport.MQTTOptions{
			BrokerURL: cfg.MQTTBrokerURL,
			Username:  cfg.MQTTUsername,
			Password:  cfg.MQTTPassword,
			Namespace: cfg.MQTTNamespace,
			QoS:       cfg.MQTTQoS,
		}, logger))
	}
	return out
}

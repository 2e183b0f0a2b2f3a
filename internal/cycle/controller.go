// Package cycle implements the wake-report-sleep sequence. One run per
// power-up: latch power, associate, read the sensors, report three events,
// tear down, power off. The sequence is linear: nothing loops back and
// nothing is retried.
package cycle

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/hal"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/transport"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

// Options are the timing and addressing knobs of a cycle.
type Options struct {
	LinkPollInterval time.Duration
	// LinkTimeout bounds the association wait. Zero means wait forever,
	// matching the original behavior of this class of node.
	LinkTimeout time.Duration
	// GuardDelay is held after the last send so a slow-closing proximity
	// switch cannot re-trigger the node mid-teardown.
	GuardDelay time.Duration
	// PowerDownGrace is how long to wait for the latch drop to take effect
	// before releasing the pin as a last resort.
	PowerDownGrace time.Duration

	Zone    byte
	SubZone byte
}

// Controller runs one wake cycle over the injected board and transports.
type Controller struct {
	opts       Options
	latch      hal.PowerLatch
	link       hal.Link
	battery    hal.Battery
	transports []transport.Transport
	logger     *log.Logger

	// sleep is swappable so tests do not wait out the guard windows.
	sleep func(time.Duration)
}

func New(opts Options, latch hal.PowerLatch, link hal.Link, battery hal.Battery, transports []transport.Transport, logger *log.Logger) *Controller {
	if opts.LinkPollInterval <= 0 {
		opts.LinkPollInterval = 200 * time.Millisecond
	}
	return &Controller{
		opts:       opts,
		latch:      latch,
		link:       link,
		battery:    battery,
		transports: transports,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Run executes the cycle. It never returns an error: every failure is
// terminal for its own operation only, logged and swallowed, and the node
// proceeds to power-down regardless.
func (c *Controller) Run(ctx context.Context) {
	start := time.Now()

	// 1. Keep the regulator on before anything else can take time.
	if err := c.latch.Hold(); err != nil {
		c.logger.Printf("[latch] hold failed: %v", err)
	}

	// 2. Device identity from the hardware address.
	guid := c.deriveGUID()
	c.logger.Printf("[cycle] guid %s", guid)

	// 3. Wait for the link.
	associated := c.waitForLink(ctx)

	// 4. Point-in-time reads.
	mv, err := c.battery.Millivolts()
	if err != nil {
		c.logger.Printf("[battery] read failed: %v", err)
	}
	rssi, err := c.link.RSSI()
	if err != nil {
		c.logger.Printf("[link] rssi read failed: %v", err)
	}
	c.logger.Printf("[cycle] battery=%dmV rssi=%ddBm associated=%v", mv, rssi, associated)

	// 5. Open what opens; a dead transport just sits the cycle out.
	open := make([]transport.Transport, 0, len(c.transports))
	for _, t := range c.transports {
		if err := t.Open(ctx, guid); err != nil {
			c.logger.Printf("[%s] open failed: %v", t.Name(), err)
			continue
		}
		open = append(open, t)
	}

	// 6. The three reports, fanned out independently per transport.
	for _, e := range c.buildEvents(guid, mv, rssi, start) {
		for _, t := range open {
			if err := t.Send(ctx, e); err != nil {
				c.logger.Printf("[%s] send class=%d type=%d failed: %v", t.Name(), e.Class, e.Type, err)
			}
		}
	}

	// 7. Tear down every session that opened.
	for _, t := range open {
		if err := t.Close(); err != nil {
			c.logger.Printf("[%s] close failed: %v", t.Name(), err)
		}
	}

	// 8. Guard window, then drop the latch. On working hardware the drop
	// removes power and nothing below runs.
	c.sleep(c.opts.GuardDelay)
	c.logger.Printf("[cycle] powering down after %s", time.Since(start).Round(time.Millisecond))
	if err := c.latch.PowerDown(); err != nil {
		c.logger.Printf("[latch] power-down failed: %v", err)
	}

	// 9. Still here: the drop did not take effect. Give it a moment, then
	// leave the pin inert.
	c.sleep(c.opts.PowerDownGrace)
	c.logger.Printf("[latch] power-down did not take effect, releasing hold pin")
	if err := c.latch.Release(); err != nil {
		c.logger.Printf("[latch] release failed: %v", err)
	}
}

func (c *Controller) deriveGUID() vscp.GUID {
	mac, err := c.link.HardwareAddr()
	if err != nil {
		c.logger.Printf("[link] hardware address unavailable: %v", err)
		return vscp.GUID{}
	}
	guid, err := vscp.GUIDFromMAC(mac)
	if err != nil {
		c.logger.Printf("[cycle] guid derivation failed: %v", err)
		return vscp.GUID{}
	}
	return guid
}

// waitForLink polls until the interface reports up. With LinkTimeout zero it
// blocks for as long as it takes; the cycle carries on either way since the
// transports will fail on their own if the network truly is not there.
func (c *Controller) waitForLink(ctx context.Context) bool {
	var deadline time.Time
	if c.opts.LinkTimeout > 0 {
		deadline = time.Now().Add(c.opts.LinkTimeout)
	}
	for {
		up, err := c.link.Up()
		if err != nil {
			c.logger.Printf("[link] state read failed: %v", err)
		} else if up {
			return true
		}
		if ctx.Err() != nil {
			c.logger.Printf("[link] association wait cancelled")
			return false
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			c.logger.Printf("[link] association timed out after %s, continuing without network", c.opts.LinkTimeout)
			return false
		}
		c.sleep(c.opts.LinkPollInterval)
	}
}

// buildEvents constructs the fixed report: detect, battery voltage as a
// normalized-integer millivolt measurement, signal strength as a string
// measurement. All three exist whether or not anything can carry them.
func (c *Controller) buildEvents(guid vscp.GUID, mv, rssi int, start time.Time) [3]vscp.Event {
	ts := uint32(time.Since(start).Microseconds())

	detect, _ := vscp.NewEvent(vscp.PriorityNormal,
		vscp.ClassInformation, vscp.TypeInformationDetect,
		guid, []byte{0, c.opts.Zone, c.opts.SubZone})

	voltage, _ := vscp.NewEvent(vscp.PriorityNormal,
		vscp.ClassMeasurement, vscp.TypeMeasurementElectricPotential,
		guid, vscp.NormalizedIntData(vscp.UnitDefault, 0, -3, int16(mv)))

	signal, _ := vscp.NewEvent(vscp.PriorityNormal,
		vscp.ClassData, vscp.TypeDataSignalQuality,
		guid, vscp.StringData(vscp.UnitDefault, 0, strconv.Itoa(rssi)))

	for i, e := range []*vscp.Event{&detect, &voltage, &signal} {
		e.Timestamp = ts + uint32(i)
	}
	return [3]vscp.Event{detect, voltage, signal}
}

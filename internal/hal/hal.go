// Package hal abstracts the board: the power-hold latch, the network link
// and the battery sense channel. The wake-cycle controller only sees these
// interfaces; cmd/wakenode wires the Linux implementations and the tests
// wire recording fakes.
package hal

import "net"

// PowerLatch drives the GPIO line that keeps the regulator enabled. Hold
// asserts it, PowerDown drops it (which on working hardware removes power
// mid-call), Release puts the line in an inert high-impedance state as the
// last-resort mitigation when PowerDown did not take effect.
type PowerLatch interface {
	Hold() error
	PowerDown() error
	Release() error
}

// Link is the radio-side view of the network interface.
type Link interface {
	HardwareAddr() (net.HardwareAddr, error)
	Up() (bool, error)
	RSSI() (int, error)
}

// Battery reads the supply voltage.
type Battery interface {
	Millivolts() (int, error)
}

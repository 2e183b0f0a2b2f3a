package hal

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const gpioRoot = "/sys/class/gpio"

// SysfsLatch drives a sysfs GPIO line.
type SysfsLatch struct {
	Pin int

	// Root overrides the sysfs mount point, for tests.
	Root string
}

func (l *SysfsLatch) root() string {
	if l.Root != "" {
		return l.Root
	}
	return gpioRoot
}

func (l *SysfsLatch) pinDir() string {
	return filepath.Join(l.root(), fmt.Sprintf("gpio%d", l.Pin))
}

func (l *SysfsLatch) export() error {
	if _, err := os.Stat(l.pinDir()); err == nil {
		return nil
	}
	err := os.WriteFile(filepath.Join(l.root(), "export"), []byte(strconv.Itoa(l.Pin)), 0o200)
	if err != nil && !os.IsExist(err) {
		return fmt.Errorf("hal: export gpio%d: %w", l.Pin, err)
	}
	return nil
}

func (l *SysfsLatch) write(file, value string) error {
	if err := os.WriteFile(filepath.Join(l.pinDir(), file), []byte(value), 0o200); err != nil {
		return fmt.Errorf("hal: gpio%d %s=%s: %w", l.Pin, file, value, err)
	}
	return nil
}

func (l *SysfsLatch) Hold() error {
	if err := l.export(); err != nil {
		return err
	}
	if err := l.write("direction", "out"); err != nil {
		return err
	}
	return l.write("value", "1")
}

func (l *SysfsLatch) PowerDown() error {
	return l.write("value", "0")
}

func (l *SysfsLatch) Release() error {
	return l.write("direction", "in")
}

// WirelessLink reads interface state from the kernel.
type WirelessLink struct {
	Iface string

	// WirelessPath overrides /proc/net/wireless, for tests.
	WirelessPath string
}

func (w *WirelessLink) HardwareAddr() (net.HardwareAddr, error) {
	ifc, err := net.InterfaceByName(w.Iface)
	if err != nil {
		return nil, fmt.Errorf("hal: interface %s: %w", w.Iface, err)
	}
	return ifc.HardwareAddr, nil
}

func (w *WirelessLink) Up() (bool, error) {
	ifc, err := net.InterfaceByName(w.Iface)
	if err != nil {
		return false, fmt.Errorf("hal: interface %s: %w", w.Iface, err)
	}
	return ifc.Flags&net.FlagUp != 0 && ifc.Flags&net.FlagRunning != 0, nil
}

// RSSI parses the level column of /proc/net/wireless for the interface.
func (w *WirelessLink) RSSI() (int, error) {
	path := w.WirelessPath
	if path == "" {
		path = "/proc/net/wireless"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("hal: read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(raw), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || !strings.HasPrefix(fields[0], w.Iface+":") {
			continue
		}
		level := strings.TrimSuffix(fields[3], ".")
		v, err := strconv.ParseFloat(level, 64)
		if err != nil {
			return 0, fmt.Errorf("hal: bad signal level %q for %s: %w", fields[3], w.Iface, err)
		}
		return int(v), nil
	}
	return 0, fmt.Errorf("hal: no wireless stats for %s", w.Iface)
}

// IIOBattery reads a raw ADC sample from an IIO channel file and scales it
// to millivolts at the top of the divider:
// mv = raw * ScaleMilli * Divider, with Divider = (R1+R2)/R2.
type IIOBattery struct {
	RawPath    string
	ScaleMilli float64 // millivolts per LSB at the ADC pin
	Divider    float64
}

func (b *IIOBattery) Millivolts() (int, error) {
	raw, err := os.ReadFile(b.RawPath)
	if err != nil {
		return 0, fmt.Errorf("hal: read %s: %w", b.RawPath, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("hal: bad adc sample %q: %w", strings.TrimSpace(string(raw)), err)
	}
	div := b.Divider
	if div <= 0 {
		div = 1
	}
	return int(float64(n)*b.ScaleMilli*div + 0.5), nil
}

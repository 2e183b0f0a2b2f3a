package hal

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestLatch(t *testing.T) (*SysfsLatch, string) {
	t.Helper()
	root := t.TempDir()
	pinDir := filepath.Join(root, "gpio5")
	if err := os.Mkdir(pinDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"direction", "value"} {
		if err := os.WriteFile(filepath.Join(pinDir, f), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return &SysfsLatch{Pin: 5, Root: root}, pinDir
}

func readPin(t *testing.T, dir, file string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSysfsLatchHold(t *testing.T) {
	latch, pinDir := newTestLatch(t)

	if err := latch.Hold(); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if got := readPin(t, pinDir, "direction"); got != "out" {
		t.Errorf("direction = %q, want out", got)
	}
	if got := readPin(t, pinDir, "value"); got != "1" {
		t.Errorf("value = %q, want 1", got)
	}
}

func TestSysfsLatchPowerDownAndRelease(t *testing.T) {
	latch, pinDir := newTestLatch(t)

	if err := latch.Hold(); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if err := latch.PowerDown(); err != nil {
		t.Fatalf("power down: %v", err)
	}
	if got := readPin(t, pinDir, "value"); got != "0" {
		t.Errorf("value after power-down = %q, want 0", got)
	}

	if err := latch.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := readPin(t, pinDir, "direction"); got != "in" {
		t.Errorf("direction after release = %q, want in", got)
	}
}

func TestSysfsLatchMissingPin(t *testing.T) {
	latch := &SysfsLatch{Pin: 7, Root: t.TempDir()}
	// Neither an exported pin dir nor an export file: Hold must surface it.
	if err := latch.Hold(); err == nil {
		t.Fatal("expected error for missing gpio")
	}
}

func TestWirelessLinkRSSI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wireless")
	content := "Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE\n" +
		" face representative | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22\n" +
		" wlan0: 0000   43.  -67.  -256        0      0      0      0      0        0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	link := &WirelessLink{Iface: "wlan0", WirelessPath: path}
	rssi, err := link.RSSI()
	if err != nil {
		t.Fatalf("rssi: %v", err)
	}
	if rssi != -67 {
		t.Errorf("rssi = %d, want -67", rssi)
	}
}

func TestWirelessLinkRSSIUnknownInterface(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wireless")
	if err := os.WriteFile(path, []byte("header\nheader\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := &WirelessLink{Iface: "wlan9", WirelessPath: path}
	if _, err := link.RSSI(); err == nil {
		t.Fatal("expected error for missing interface stats")
	}
}

func TestIIOBatteryMillivolts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	if err := os.WriteFile(path, []byte("2048\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	b := &IIOBattery{RawPath: path, ScaleMilli: 0.8, Divider: 2.0}
	mv, err := b.Millivolts()
	if err != nil {
		t.Fatalf("millivolts: %v", err)
	}
	if mv != 3277 { // 2048 * 0.8 * 2, rounded
		t.Errorf("mv = %d, want 3277", mv)
	}
}

func TestIIOBatteryBadSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := &IIOBattery{RawPath: path, ScaleMilli: 1, Divider: 1}
	if _, err := b.Millivolts(); err == nil {
		t.Fatal("expected error for non-numeric sample")
	}
}

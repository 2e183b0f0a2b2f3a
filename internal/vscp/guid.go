package vscp

import (
	"fmt"
	"net"
	"strings"
)

// GUID is the 16-byte device identity used as event source and client id.
type GUID [16]byte

// guidMACPrefix marks a GUID derived from an Ethernet hardware address.
var guidMACPrefix = [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}

// GUIDFromMAC builds the interface-derived GUID: the fixed FF..FE prefix,
// the six MAC bytes, then two zero nickname bytes.
func GUIDFromMAC(mac net.HardwareAddr) (GUID, error) {
	if len(mac) != 6 {
		return GUID{}, fmt.Errorf("vscp: hardware address must be 6 bytes, got %d", len(mac))
	}
	var g GUID
	copy(g[:8], guidMACPrefix[:])
	copy(g[8:14], mac)
	return g, nil
}

// String renders the GUID as colon-separated upper-case hex,
// e.g. FF:FF:FF:FF:FF:FF:FF:FE:AA:BB:CC:DD:EE:FF:00:00.
func (g GUID) String() string {
	parts := make([]string, len(g))
	for i, b := range g {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// ParseGUID is the inverse of String.
func ParseGUID(s string) (GUID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 16 {
		return GUID{}, fmt.Errorf("vscp: guid must have 16 groups, got %d", len(parts))
	}
	var g GUID
	for i, p := range parts {
		var b byte
		if _, err := fmt.Sscanf(p, "%02X", &b); err != nil {
			return GUID{}, fmt.Errorf("vscp: bad guid group %q: %w", p, err)
		}
		g[i] = b
	}
	return g, nil
}

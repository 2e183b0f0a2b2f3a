// Package vscp holds the event model of the node: device GUIDs derived from
// the network hardware address, level-1 class/type constants, measurement
// data codings and the text record format shared by the daemon and MQTT
// transports.
package vscp

import (
	"fmt"
	"strconv"
	"strings"
)

// Level-1 classes used by the node.
const (
	ClassMeasurement uint16 = 10 // CLASS1.MEASUREMENT
	ClassData        uint16 = 15 // CLASS1.DATA
	ClassInformation uint16 = 20 // CLASS1.INFORMATION
)

// Event types within the classes above.
const (
	TypeMeasurementElectricPotential uint16 = 16 // CLASS1.MEASUREMENT
	TypeDataSignalQuality            uint16 = 6  // CLASS1.DATA
	TypeInformationDetect            uint16 = 49 // CLASS1.INFORMATION
)

// Priorities occupy bits 7..5 of the head byte.
const (
	PriorityHigh   byte = 0
	PriorityNormal byte = 3
	PriorityLow    byte = 7
)

// MaxDataLen is the level-1 payload limit.
const MaxDataLen = 8

// Event is one telemetry record. Instances are transient: built, sent and
// discarded within a single wake cycle.
type Event struct {
	Head      byte
	Class     uint16
	Type      uint16
	ObID      uint32
	Timestamp uint32 // microseconds since wake
	GUID      GUID
	Data      []byte
}

// NewEvent builds an event with the priority packed into the head byte.
func NewEvent(priority byte, class, typ uint16, guid GUID, data []byte) (Event, error) {
	if len(data) > MaxDataLen {
		return Event{}, fmt.Errorf("vscp: data too long: %d > %d", len(data), MaxDataLen)
	}
	return Event{
		Head:  priority << 5,
		Class: class,
		Type:  typ,
		GUID:  guid,
		Data:  data,
	}, nil
}

// Record renders the event as the wire text record:
// head,obid,timestamp,class,type,guid,d0,d1,... with data bytes in decimal.
func (e Event) Record() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(e.Head)))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(uint64(e.ObID), 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(uint64(e.Timestamp), 10))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(int(e.Class)))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(int(e.Type)))
	b.WriteByte(',')
	b.WriteString(e.GUID.String())
	for _, d := range e.Data {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(d)))
	}
	return b.String()
}

// ParseRecord is the inverse of Record. The consumer side uses it to decode
// node payloads back into events.
func ParseRecord(s string) (Event, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 6 {
		return Event{}, fmt.Errorf("vscp: record has %d fields, want at least 6", len(parts))
	}

	var e Event
	head, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return Event{}, fmt.Errorf("vscp: bad head %q: %w", parts[0], err)
	}
	e.Head = byte(head)

	obid, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Event{}, fmt.Errorf("vscp: bad obid %q: %w", parts[1], err)
	}
	e.ObID = uint32(obid)

	ts, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return Event{}, fmt.Errorf("vscp: bad timestamp %q: %w", parts[2], err)
	}
	e.Timestamp = uint32(ts)

	class, err := strconv.ParseUint(parts[3], 10, 16)
	if err != nil {
		return Event{}, fmt.Errorf("vscp: bad class %q: %w", parts[3], err)
	}
	e.Class = uint16(class)

	typ, err := strconv.ParseUint(parts[4], 10, 16)
	if err != nil {
		return Event{}, fmt.Errorf("vscp: bad type %q: %w", parts[4], err)
	}
	e.Type = uint16(typ)

	if e.GUID, err = ParseGUID(parts[5]); err != nil {
		return Event{}, err
	}

	rest := parts[6:]
	if len(rest) > MaxDataLen {
		return Event{}, fmt.Errorf("vscp: record carries %d data bytes, max %d", len(rest), MaxDataLen)
	}
	for _, p := range rest {
		d, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return Event{}, fmt.Errorf("vscp: bad data byte %q: %w", p, err)
		}
		e.Data = append(e.Data, byte(d))
	}
	return e, nil
}

package vscp

import (
	"encoding/binary"
	"strconv"
)

// Data coding representations, bits 7..5 of the coding byte. The unit sits in
// bits 4..3 and the sensor index in bits 2..0.
const (
	codingString        byte = 0x40
	codingNormalizedInt byte = 0x80
)

// UnitDefault is unit 0 of a measurement type (Volt for electric potential,
// plain quality for signal quality).
const UnitDefault byte = 0

func codingByte(repr, unit, sensorIndex byte) byte {
	return repr | (unit<<3)&0x18 | sensorIndex&0x07
}

// NormalizedIntData encodes value*10^exponent as a normalized-integer
// measurement: coding byte, signed exponent, 16-bit big-endian value.
// The result is always exactly 4 bytes.
func NormalizedIntData(unit, sensorIndex byte, exponent int8, value int16) []byte {
	d := make([]byte, 4)
	d[0] = codingByte(codingNormalizedInt, unit, sensorIndex)
	d[1] = byte(exponent)
	binary.BigEndian.PutUint16(d[2:], uint16(value))
	return d
}

// StringData encodes a string-valued measurement: coding byte followed by the
// ASCII value. The value is clamped to the level-1 payload limit.
func StringData(unit, sensorIndex byte, value string) []byte {
	if len(value) > MaxDataLen-1 {
		value = value[:MaxDataLen-1]
	}
	d := make([]byte, 0, 1+len(value))
	d = append(d, codingByte(codingString, unit, sensorIndex))
	return append(d, value...)
}

// DecodeValue extracts the numeric value of a measurement payload. It
// understands the two codings the node emits; anything else reports false.
func DecodeValue(data []byte) (float64, bool) {
	if len(data) < 2 {
		return 0, false
	}
	switch data[0] & 0xE0 {
	case codingNormalizedInt:
		if len(data) != 4 {
			return 0, false
		}
		exp := int8(data[1])
		v := float64(int16(binary.BigEndian.Uint16(data[2:])))
		for ; exp > 0; exp-- {
			v *= 10
		}
		for ; exp < 0; exp++ {
			v /= 10
		}
		return v, true
	case codingString:
		v, err := strconv.ParseFloat(string(data[1:]), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

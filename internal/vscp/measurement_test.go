package vscp

import (
	"math"
	"reflect"
	"testing"
)

func TestNormalizedIntDataEncoding(t *testing.T) {
	d := NormalizedIntData(UnitDefault, 0, -3, 3300)

	want := []byte{0x80, 0xFD, 0x0C, 0xE4}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("data = %#v, want %#v", d, want)
	}
	if len(d) != 4 {
		t.Errorf("voltage payload must be exactly 4 bytes, got %d", len(d))
	}
}

func TestNormalizedIntDataUnitAndIndexBits(t *testing.T) {
	d := NormalizedIntData(2, 5, 0, 1)
	if d[0] != 0x80|2<<3|5 {
		t.Errorf("coding byte = %#x, want %#x", d[0], 0x80|2<<3|5)
	}
}

func TestStringDataLength(t *testing.T) {
	for _, tc := range []struct {
		value string
		want  int
	}{
		{"-67", 4},
		{"-100", 5},
		{"0", 2},
		{"31", 3},
	} {
		d := StringData(UnitDefault, 0, tc.value)
		if len(d) != tc.want {
			t.Errorf("StringData(%q) length = %d, want %d", tc.value, len(d), tc.want)
		}
		if d[0] != 0x40 {
			t.Errorf("StringData(%q) coding byte = %#x, want 0x40", tc.value, d[0])
		}
	}
}

func TestStringDataClampsToPayloadLimit(t *testing.T) {
	d := StringData(UnitDefault, 0, "-1234567890")
	if len(d) != MaxDataLen {
		t.Errorf("clamped length = %d, want %d", len(d), MaxDataLen)
	}
}

func TestDecodeValue(t *testing.T) {
	if v, ok := DecodeValue(NormalizedIntData(UnitDefault, 0, -3, 3300)); !ok || math.Abs(v-3.3) > 1e-9 {
		t.Errorf("normalized int decode = %v %v, want 3.3 true", v, ok)
	}
	if v, ok := DecodeValue(NormalizedIntData(UnitDefault, 0, 2, -5)); !ok || v != -500 {
		t.Errorf("positive exponent decode = %v %v, want -500 true", v, ok)
	}
	if v, ok := DecodeValue(StringData(UnitDefault, 0, "-67")); !ok || v != -67 {
		t.Errorf("string decode = %v %v, want -67 true", v, ok)
	}
	if _, ok := DecodeValue([]byte{0x00, 1, 2}); ok {
		t.Error("bit coding should not decode")
	}
	if _, ok := DecodeValue(nil); ok {
		t.Error("empty payload should not decode")
	}
}

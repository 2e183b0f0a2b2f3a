package consumer

import (
	"net"
	"testing"
	"time"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

func nodeEvent(t *testing.T) vscp.Event {
	t.Helper()
	mac, _ := net.ParseMAC("AA:BB:CC:DD:EE:FF")
	guid, _ := vscp.GUIDFromMAC(mac)
	e, err := vscp.NewEvent(vscp.PriorityNormal,
		vscp.ClassMeasurement, vscp.TypeMeasurementElectricPotential,
		guid, vscp.NormalizedIntData(vscp.UnitDefault, 0, -3, 3000))
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return e
}

func TestParseTopic(t *testing.T) {
	topic := "vscp/FF:FF:FF:FF:FF:FF:FF:FE:AA:BB:CC:DD:EE:FF:00:00/10/16"
	guid, class, typ, err := ParseTopic("vscp", topic)
	if err != nil {
		t.Fatalf("ParseTopic: %v", err)
	}
	if guid != nodeEvent(t).GUID || class != 10 || typ != 16 {
		t.Errorf("parsed %s %d/%d", guid, class, typ)
	}
}

func TestParseTopicRejectsMalformed(t *testing.T) {
	for _, topic := range []string{
		"",
		"vscp/only-guid",
		"other/FF:FF:FF:FF:FF:FF:FF:FE:AA:BB:CC:DD:EE:FF:00:00/10/16",
		"vscp/NOT-A-GUID/10/16",
		"vscp/FF:FF:FF:FF:FF:FF:FF:FE:AA:BB:CC:DD:EE:FF:00:00/x/16",
		"vscp/FF:FF:FF:FF:FF:FF:FF:FE:AA:BB:CC:DD:EE:FF:00:00/10/16/extra",
	} {
		if _, _, _, err := ParseTopic("vscp", topic); err == nil {
			t.Errorf("ParseTopic(%q): expected error", topic)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	e := nodeEvent(t)
	topic := "vscp/" + e.GUID.String() + "/10/16"

	got, err := Decode("vscp", topic, []byte(e.Record()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Class != e.Class || got.Type != e.Type || got.GUID != e.GUID {
		t.Errorf("decoded %d/%d %s", got.Class, got.Type, got.GUID)
	}
}

func TestDecodeRejectsTopicPayloadDisagreement(t *testing.T) {
	e := nodeEvent(t)
	topic := "vscp/" + e.GUID.String() + "/20/49" // detect routing, measurement payload
	if _, err := Decode("vscp", topic, []byte(e.Record())); err == nil {
		t.Fatal("expected disagreement error")
	}
}

func TestNewEnvelopeDecodesMeasurementValue(t *testing.T) {
	e := nodeEvent(t)
	env := NewEnvelope("id-1", "vscp/x/10/16", e, time.Unix(0, 0).UTC())

	if env.Value == nil || *env.Value != 3.0 {
		t.Fatalf("envelope value = %v, want 3.0", env.Value)
	}
	if env.GUID != e.GUID.String() {
		t.Errorf("envelope guid = %s", env.GUID)
	}
}

func TestNewEnvelopeSkipsValueForDetect(t *testing.T) {
	mac, _ := net.ParseMAC("AA:BB:CC:DD:EE:FF")
	guid, _ := vscp.GUIDFromMAC(mac)
	e, _ := vscp.NewEvent(vscp.PriorityNormal, vscp.ClassInformation, vscp.TypeInformationDetect, guid, []byte{0, 1, 2})

	env := NewEnvelope("id-2", "vscp/x/20/49", e, time.Now())
	if env.Value != nil {
		t.Errorf("detect envelope should carry no value, got %v", *env.Value)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate([]byte("abcdef"), 3); got != "abc..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate([]byte("ab"), 3); got != "ab" {
		t.Errorf("Truncate = %q", got)
	}
}

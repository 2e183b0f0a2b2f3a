package transport

import (
	"bufio"
	"context"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

// fakeDaemon is an in-process vscpd stand-in: greets with +OK, acknowledges
// every line, and records what it was told.
type fakeDaemon struct {
	ln      net.Listener
	mu      sync.Mutex
	lines   []string
	rejects map[string]bool // verbs answered with -OK
}

func startFakeDaemon(t *testing.T, rejects ...string) *fakeDaemon {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	f := &fakeDaemon{ln: ln, rejects: map[string]bool{}}
	for _, r := range rejects {
		f.rejects[r] = true
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := conn.Write([]byte("+OK Welcome\r\n")); err != nil {
			return
		}
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimSpace(line)
			f.mu.Lock()
			f.lines = append(f.lines, line)
			f.mu.Unlock()
			verb := line
			if i := strings.IndexByte(line, ' '); i > 0 {
				verb = line[:i]
			}
			reply := "+OK\r\n"
			if f.rejects[verb] {
				reply = "-OK rejected\r\n"
			}
			if _, err := conn.Write([]byte(reply)); err != nil {
				return
			}
			if verb == "QUIT" {
				return
			}
		}
	}()
	return f
}

func (f *fakeDaemon) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.lines...)
}

func (f *fakeDaemon) options() DaemonOptions {
	addr := f.ln.Addr().(*net.TCPAddr)
	return DaemonOptions{
		Host:      "127.0.0.1",
		Port:      addr.Port,
		Username:  "node",
		Password:  "secret",
		IOTimeout: 2 * time.Second,
	}
}

func testEvent(t *testing.T) vscp.Event {
	t.Helper()
	mac, _ := net.ParseMAC("AA:BB:CC:DD:EE:FF")
	guid, _ := vscp.GUIDFromMAC(mac)
	e, err := vscp.NewEvent(vscp.PriorityNormal, vscp.ClassInformation, vscp.TypeInformationDetect, guid, []byte{0, 1, 2})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return e
}

func TestDaemonSessionSequence(t *testing.T) {
	f := startFakeDaemon(t)
	d := NewDaemon(f.options(), log.New(io.Discard, "", 0))

	ctx := context.Background()
	if err := d.Open(ctx, testEvent(t).GUID); err != nil {
		t.Fatalf("open: %v", err)
	}
	e := testEvent(t)
	if err := d.Send(ctx, e); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := []string{
		"USER node",
		"PASS secret",
		"SEND " + e.Record(),
		"QUIT",
	}
	got := f.received()
	if len(got) != len(want) {
		t.Fatalf("daemon saw %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDaemonLoginRejection(t *testing.T) {
	f := startFakeDaemon(t, "PASS")
	d := NewDaemon(f.options(), log.New(io.Discard, "", 0))

	if err := d.Open(context.Background(), testEvent(t).GUID); err == nil {
		t.Fatal("expected open to fail on rejected PASS")
	}
	if err := d.Send(context.Background(), testEvent(t)); err == nil {
		t.Fatal("expected send on unopened session to fail")
	}
}

func TestDaemonSendRejectionIsPerOperation(t *testing.T) {
	f := startFakeDaemon(t, "SEND")
	d := NewDaemon(f.options(), log.New(io.Discard, "", 0))

	ctx := context.Background()
	if err := d.Open(ctx, testEvent(t).GUID); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := d.Send(ctx, testEvent(t)); err == nil {
		t.Fatal("expected send to surface the rejection")
	}
	// The session survives a rejected SEND; close still runs the QUIT.
	if err := d.Close(); err != nil {
		t.Fatalf("close after rejected send: %v", err)
	}
}

func TestDaemonDialFailure(t *testing.T) {
	d := NewDaemon(DaemonOptions{Host: "127.0.0.1", Port: 1, IOTimeout: 200 * time.Millisecond}, log.New(io.Discard, "", 0))
	if err := d.Open(context.Background(), testEvent(t).GUID); err == nil {
		t.Fatal("expected dial to a closed port to fail")
	}
}

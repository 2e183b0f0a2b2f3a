package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

// DaemonOptions is the telemetry-daemon half of the node configuration.
type DaemonOptions struct {
	Host     string
	Port     int
	Username string
	Password string

	IOTimeout time.Duration
}

// Daemon talks the line-oriented TCP interface of a vscpd daemon: a +OK
// greeting, USER/PASS login, one SEND per event, QUIT on close. Every
// command must come back with a +OK line.
type Daemon struct {
	opts   DaemonOptions
	logger *log.Logger
	conn   net.Conn
	r      *bufio.Reader
}

func NewDaemon(opts DaemonOptions, logger *log.Logger) *Daemon {
	if opts.IOTimeout <= 0 {
		opts.IOTimeout = 10 * time.Second
	}
	return &Daemon{opts: opts, logger: logger}
}

func (d *Daemon) Name() string { return "daemon" }

func (d *Daemon) addr() string {
	return net.JoinHostPort(d.opts.Host, fmt.Sprintf("%d", d.opts.Port))
}

func (d *Daemon) Open(ctx context.Context, _ vscp.GUID) error {
	dialer := net.Dialer{Timeout: d.opts.IOTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.addr())
	if err != nil {
		return fmt.Errorf("daemon dial %s: %w", d.addr(), err)
	}
	d.conn = conn
	d.r = bufio.NewReader(conn)

	if err := d.expectOK(); err != nil {
		d.abort()
		return fmt.Errorf("daemon greeting: %w", err)
	}
	if err := d.command("USER " + d.opts.Username); err != nil {
		d.abort()
		return fmt.Errorf("daemon login: %w", err)
	}
	if err := d.command("PASS " + d.opts.Password); err != nil {
		d.abort()
		return fmt.Errorf("daemon login: %w", err)
	}
	d.logger.Printf("[daemon] session open to %s", d.addr())
	return nil
}

func (d *Daemon) Send(_ context.Context, e vscp.Event) error {
	if d.conn == nil {
		return errors.New("daemon session not open")
	}
	return d.command("SEND " + e.Record())
}

func (d *Daemon) Close() error {
	if d.conn == nil {
		return nil
	}
	// QUIT is a courtesy; the close matters.
	_ = d.command("QUIT")
	err := d.conn.Close()
	d.conn, d.r = nil, nil
	return err
}

func (d *Daemon) abort() {
	_ = d.conn.Close()
	d.conn, d.r = nil, nil
}

func (d *Daemon) command(line string) error {
	if err := d.conn.SetDeadline(time.Now().Add(d.opts.IOTimeout)); err != nil {
		return err
	}
	if _, err := d.conn.Write([]byte(line + "\r\n")); err != nil {
		return fmt.Errorf("daemon write %q: %w", word(line), err)
	}
	if err := d.expectOK(); err != nil {
		return fmt.Errorf("daemon %s: %w", word(line), err)
	}
	return nil
}

func (d *Daemon) expectOK() error {
	if err := d.conn.SetReadDeadline(time.Now().Add(d.opts.IOTimeout)); err != nil {
		return err
	}
	resp, err := d.r.ReadString('\n')
	if err != nil {
		return err
	}
	resp = strings.TrimSpace(resp)
	if !strings.HasPrefix(resp, "+OK") {
		return fmt.Errorf("daemon replied %q", resp)
	}
	return nil
}

// word trims a command line to its verb for error messages, keeping
// credentials out of the logs.
func word(line string) string {
	if i := strings.IndexByte(line, ' '); i > 0 {
		return line[:i]
	}
	return line
}

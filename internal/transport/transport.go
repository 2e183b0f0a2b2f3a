// Package transport carries events from the node to its sinks. Both
// implementations are strictly one-shot: open once, send a handful of
// events, close. There is no reconnect and no retry; a failed open simply
// leaves that sink out of the cycle.
package transport

import (
	"context"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/vscp"
)

type Transport interface {
	Name() string
	// Open establishes the session. The source GUID is handed over here,
	// not at construction: the cycle derives it only after the hold pin is
	// asserted, and nothing may touch the hardware before that.
	Open(ctx context.Context, source vscp.GUID) error
	Send(ctx context.Context, e vscp.Event) error
	Close() error
}

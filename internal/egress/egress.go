// Package egress defines the write-only sink contract every §6/§7
// egress channel implements: MQTT, InfluxDB, a generic webhook, a
// compacted UDP "display" feed, and a DBus status method.
package egress

import (
	"context"

	"github.com/houneteam/occusensor/internal/snapshot"
)

// Sink sends one already-computed snapshot downstream. Implementations
// own their own connection lifecycle and backpressure/reconnect policy
// (§7); Send is called once per debounced emit (internal/snapshot.Emitter).
type Sink interface {
	Send(ctx context.Context, snap snapshot.Snapshot) error
}

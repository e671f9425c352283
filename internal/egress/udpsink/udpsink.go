// Package udpsink implements the UDP "display" egress channel (§6): a
// compacted per-group phone-count JSON sent to UDP_SIGN_PORT for a
// local sign/display controller to render, distinct from the mesh
// gossip channel though it shares the same raw-UDP-send idiom.
package udpsink

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/houneteam/occusensor/internal/snapshot"
)

// GroupCount is one group's phone headcount in the compacted feed.
type GroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// Compact is the payload sent over UDP: just enough for a sign
// controller to render without parsing the full snapshot.
type Compact struct {
	Groups []GroupCount `json:"groups"`
}

// GroupCounter extracts a group's people-present headcount from the
// source snapshot; Sink doesn't recompute occupancy itself, it only
// reports what the caller already has.
type GroupCounter func(snap snapshot.Snapshot) []GroupCount

// Sink sends the compacted JSON to a fixed destination port, grounded
// on internal/mesh.Transport's WriteToUDP send idiom.
type Sink struct {
	conn    *net.UDPConn
	dst     *net.UDPAddr
	counter GroupCounter
}

// Open binds an ephemeral local UDP socket and targets port on the
// local broadcast address (§6 "UDP display").
func Open(port int, counter GroupCounter) (*Sink, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("udpsink: listen: %w", err)
	}
	return &Sink{
		conn:    conn,
		dst:     &net.UDPAddr{IP: net.IPv4bcast, Port: port},
		counter: counter,
	}, nil
}

// Close releases the socket.
func (s *Sink) Close() error {
	return s.conn.Close()
}

// Send implements egress.Sink. A transient send failure is returned
// for the caller to log-and-continue per §7; there is no retry inline.
func (s *Sink) Send(_ context.Context, snap snapshot.Snapshot) error {
	payload, err := json.Marshal(Compact{Groups: s.counter(snap)})
	if err != nil {
		return fmt.Errorf("udpsink: marshal: %w", err)
	}
	_, err = s.conn.WriteToUDP(payload, s.dst)
	return err
}

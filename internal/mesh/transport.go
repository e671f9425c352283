package mesh

import (
	"context"
	"fmt"
	"net"

	"github.com/houneteam/occusensor/internal/console"
)

// Transport sends and receives mesh datagrams over UDP broadcast (§4.F).
type Transport struct {
	port int
	conn *net.UDPConn
}

// Listen opens the UDP socket used for both receive and broadcast send
// (§4.F "Carrier: UDP broadcast, single well-known port").
func Listen(port int) (*Transport, error) {
	addr := &net.UDPAddr{Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("mesh: listen on port %d: %w", port, err)
	}
	return &Transport{port: port, conn: conn}, nil
}

// Close releases the socket, unblocking any in-progress Receive call
// (§4.F "Cancellation... closes the socket").
func (t *Transport) Close() error {
	return t.conn.Close()
}

// Broadcast sends m to the LAN broadcast address on the transport's
// port. Send failures are transient per §7 and are returned for the
// caller to log-and-continue, never retried inline.
func (t *Transport) Broadcast(m Message) error {
	payload, err := Encode(m)
	if err != nil {
		return fmt.Errorf("mesh: encode: %w", err)
	}
	if len(payload) > MaxDatagramSize {
		return fmt.Errorf("mesh: payload %d bytes exceeds max %d", len(payload), MaxDatagramSize)
	}
	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: t.port}
	_, err = t.conn.WriteToUDP(payload, dst)
	return err
}

// Handler processes one inbound message from a peer, already filtered
// for loopback suppression by the receive loop.
type Handler func(m Message)

// Receive runs the dedicated receive loop (§4.F, §5 "Mesh receive
// thread") until ctx is cancelled, at which point the caller's prior
// Close call (triggered by the same cancellation) unblocks the pending
// read and this method returns.
func (t *Transport) Receive(ctx context.Context, selfClientID string, handle Handler) {
	buf := make([]byte, MaxDatagramSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, _, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			console.Linef("[MESH]", console.ColorRed, "receive error: %v", err)
			continue
		}
		m, err := Decode(buf[:n])
		if err != nil {
			console.Linef("[MESH]", console.ColorYellow, "malformed message dropped: %v", err)
			continue
		}
		if m.From == "" {
			console.Line("[MESH]", console.ColorYellow, "message missing access point, dropped")
			continue
		}
		if m.From == selfClientID {
			continue // loopback suppression by name (§4.F)
		}
		handle(m)
	}
}

// Package mqttsink publishes snapshots to the MQTT egress channel
// (§6/§7): topic `<root>/<access_point><suffix>/summary`, QoS 1, with
// the reconnect-then-exit state machine §7 specifies.
package mqttsink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/houneteam/occusensor/internal/console"
	"github.com/houneteam/occusensor/internal/snapshot"
)

// State mirrors §7's MQTT disconnect state machine.
type State int

const (
	StateInitial State = iota
	StateConnecting
	StateConnected
	StateDisconnecting
	StateDisconnected
)

// MaxReconnectAttempts and MaxSkippedSends implement §7's exit
// conditions: five failed reconnects in a row, or a hundred sends
// dropped while disconnected.
const (
	MaxReconnectAttempts = 5
	MaxSkippedSends      = 100
)

// Exit is called when §7's fatal conditions are hit — production code
// wires this to os.Exit; tests substitute a spy.
type Exit func(reason string)

// Sink is the MQTT egress channel.
type Sink struct {
	Root          string
	AccessPoint   string
	Suffix        string
	Server        string
	Username      string
	Password      string
	ReconnectWait time.Duration
	OnExit        Exit

	mu                sync.Mutex
	state             State
	client            pahomqtt.Client
	reconnectAttempts int
	skipped           int
}

// NewSink builds a Sink; call Connect before the first Send.
func NewSink(root, accessPoint, suffix, server, username, password string, onExit Exit) *Sink {
	return &Sink{
		Root:          root,
		AccessPoint:   accessPoint,
		Suffix:        suffix,
		Server:        server,
		Username:      username,
		Password:      password,
		ReconnectWait: 5 * time.Second,
		OnExit:        onExit,
		state:         StateInitial,
	}
}

func (s *Sink) topic() string {
	return fmt.Sprintf("%s/%s%s/summary", s.Root, s.AccessPoint, s.Suffix)
}

// Connect attempts the initial connection, grounded on the jarv-mqtt
// simulator's paho client option set (connect/lost handlers logging
// through this module's console idiom). Paho's auto-reconnect is turned
// off; reconnects go through Reconnect's attempt counter instead.
func (s *Sink) Connect() error {
	s.mu.Lock()
	s.state = StateConnecting
	s.mu.Unlock()

	opts := pahomqtt.NewClientOptions().
		AddBroker(s.Server).
		SetClientID(s.AccessPoint).
		SetUsername(s.Username).
		SetPassword(s.Password).
		SetAutoReconnect(false).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			s.mu.Lock()
			s.state = StateConnected
			s.reconnectAttempts = 0
			s.mu.Unlock()
			console.Line("[MQTT]", console.ColorGreen, "connected")
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			s.mu.Lock()
			s.state = StateDisconnected
			s.mu.Unlock()
			console.Linef("[MQTT]", console.ColorYellow, "connection lost: %v", err)
		})

	s.client = pahomqtt.NewClient(opts)
	token := s.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return err
	}
	return nil
}

// Reconnect implements §7's periodic-tick retry: attempted up to
// MaxReconnectAttempts times before calling OnExit for the supervisor
// to restart the process.
func (s *Sink) Reconnect() {
	s.mu.Lock()
	if s.state == StateConnected {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.reconnectAttempts++
	attempts := s.reconnectAttempts
	s.mu.Unlock()

	if attempts > MaxReconnectAttempts {
		if s.OnExit != nil {
			s.OnExit("mqtt: exceeded max reconnect attempts")
		}
		return
	}

	if err := s.Connect(); err != nil {
		console.Linef("[MQTT]", console.ColorYellow, "reconnect attempt %d/%d failed: %v", attempts, MaxReconnectAttempts, err)
	}
}

// Send publishes snap at QoS 1 to this access point's summary topic. A
// send attempted while disconnected is dropped and counted (§7); the
// hundredth skip triggers OnExit.
func (s *Sink) Send(ctx context.Context, snap snapshot.Snapshot) error {
	s.mu.Lock()
	connected := s.state == StateConnected
	if !connected {
		s.skipped++
		skipped := s.skipped
		s.mu.Unlock()
		if skipped >= MaxSkippedSends {
			if s.OnExit != nil {
				s.OnExit("mqtt: exceeded max skipped sends while disconnected")
			}
		}
		return fmt.Errorf("mqttsink: disconnected, skipped=%d", skipped)
	}
	s.skipped = 0
	s.mu.Unlock()

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("mqttsink: marshal: %w", err)
	}

	token := s.client.Publish(s.topic(), 1, false, body)
	token.Wait()
	return token.Error()
}

// Disconnect cleanly closes the client (§7 "disconnecting" state).
func (s *Sink) Disconnect() {
	s.mu.Lock()
	s.state = StateDisconnecting
	client := s.client
	s.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}

	s.mu.Lock()
	s.state = StateDisconnected
	s.mu.Unlock()
}

// CurrentState reports the sink's state machine position, for tests and
// diagnostics.
func (s *Sink) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

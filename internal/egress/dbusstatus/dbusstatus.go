// Package dbusstatus exports the local DBus Status() method (§6): a
// process on the same host can call it to read the most recently
// emitted snapshot without waiting on MQTT/InfluxDB/webhook delivery.
package dbusstatus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/houneteam/occusensor/internal/snapshot"
)

// BusName and ObjectPath are this service's well-known D-Bus identity.
const (
	BusName    = "com.houneteam.occusensor"
	ObjectPath = "/com/houneteam/occusensor/Status"
	Interface  = "com.houneteam.occusensor.Status"
)

// Service caches the latest snapshot and serves it over its system-bus
// D-Bus connection as Status().
type Service struct {
	conn *dbus.Conn

	mu   sync.RWMutex
	last snapshot.Snapshot
}

// Open connects to the system bus, requests BusName, and exports this
// Service's Status method at ObjectPath, grounded on the teacher's
// dbus.SystemBus() connection idiom (bluez_manager.go), extended here
// from client calls to a server export.
func Open() (*Service, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}

	svc := &Service{conn: conn}

	if err := conn.Export(svc, ObjectPath, Interface); err != nil {
		conn.Close()
		return nil, err
	}

	node := &introspect.Node{
		Name: ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: Interface,
				Methods: []introspect.Method{
					{
						Name: "Status",
						Outs: []introspect.Arg{{Name: "json", Type: "s"}},
					},
				},
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, err
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, errAlreadyOwned
	}

	return svc, nil
}

var errAlreadyOwned = dbusNameError("dbusstatus: bus name already owned by another process")

type dbusNameError string

func (e dbusNameError) Error() string { return string(e) }

// Close releases the bus connection.
func (s *Service) Close() error {
	return s.conn.Close()
}

// Update replaces the cached snapshot Status() returns. Called once per
// debounced emit, alongside every other egress.Sink.
func (s *Service) Update(snap snapshot.Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
}

// Send implements egress.Sink, so this service can sit in the same
// fan-out list as the network sinks even though it only caches.
func (s *Service) Send(_ context.Context, snap snapshot.Snapshot) error {
	s.Update(snap)
	return nil
}

// Status is the exported D-Bus method: the latest snapshot as JSON.
func (s *Service) Status() (string, *dbus.Error) {
	s.mu.RLock()
	snap := s.last
	s.mu.RUnlock()

	body, err := json.Marshal(snap)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	return string(body), nil
}

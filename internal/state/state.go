// Package state holds the single coarse-grained mutex and the three
// collections it protects (§5, §9 "typed handles... rather than
// globals"): the local device table, the access-point registry, and the
// cross-mesh closest ring. Every subsystem is handed a *State instead of
// reaching for package-level globals, the reimplementation direction
// spec.md's design notes call for in place of the source's OverallState.
package state

import (
	"sync"

	"github.com/houneteam/occusensor/internal/accesspoint"
	"github.com/houneteam/occusensor/internal/closest"
	"github.com/houneteam/occusensor/internal/device"
)

// State is the process-wide shared state, guarded by a single mutex
// (§5: "No finer-grained locking: contention is low").
type State struct {
	mu sync.Mutex

	Devices     *device.Table
	AccessPoints *accesspoint.Registry
	Closest     *closest.Ring

	// Self is this process's own access point, created once at startup.
	Self *accesspoint.AccessPoint
}

// Config bounds the table/ring capacities at construction.
type Config struct {
	DeviceCapacity  int
	ClosestCapacity int
}

// DefaultConfig mirrors the original source's table sizes closely
// enough for a single-building deployment.
var DefaultConfig = Config{DeviceCapacity: 2048, ClosestCapacity: 4096}

// New constructs an empty State.
func New(cfg Config) *State {
	return &State{
		Devices:      device.NewTable(cfg.DeviceCapacity),
		AccessPoints: accesspoint.NewRegistry(),
		Closest:      closest.NewRing(cfg.ClosestCapacity),
	}
}

// With runs fn with the state mutex held. Every mutation of Devices,
// AccessPoints, or Closest -- from the main loop or the mesh receive
// thread -- must go through this (§5 "every receive-thread transaction
// takes it, and the main loop takes it around any mutation").
func (s *State) With(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

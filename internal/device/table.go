package device

import (
	"errors"
	"time"
)

// ErrTableFull is returned by Observe when inserting a never-seen-before
// MAC would exceed Capacity (§4.B, §7 "Table full").
var ErrTableFull = errors.New("device: table full")

// Eviction timings (§4.B).
const (
	EvictStage1 = 2 * time.Minute       // request BlueZ forget, drop ttl
	EvictStage1Beacon = 4 * time.Minute // longer grace for beacon-category devices
	EvictStage2 = 20 * time.Second      // further grace before removal from table
)

// Table is the bounded, insertion-ordered set of currently-tracked local
// devices (§3, §4.B). It is not itself concurrency-safe; callers hold the
// single process-wide mutex described in §5 (see internal/state).
type Table struct {
	Capacity int

	byMAC map[string]*Device
	order []string // insertion order, oldest first
}

// NewTable creates a table bounded to capacity entries (e.g. CLOSEST-style
// N=2048 in the source).
func NewTable(capacity int) *Table {
	return &Table{
		Capacity: capacity,
		byMAC:    make(map[string]*Device, capacity),
	}
}

// Get returns the device for mac, if tracked.
func (t *Table) Get(mac string) (*Device, bool) {
	d, ok := t.byMAC[mac]
	return d, ok
}

// Len returns the number of currently tracked devices.
func (t *Table) Len() int { return len(t.byMAC) }

// All returns devices in insertion order. Callers must not mutate the slice.
func (t *Table) All() []*Device {
	out := make([]*Device, 0, len(t.order))
	for _, mac := range t.order {
		if d, ok := t.byMAC[mac]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Observe upserts a device by MAC. If the MAC is new and the table is at
// capacity, it returns ErrTableFull and the table is left unchanged
// (§7: "silently refuse to add new").
func (t *Table) Observe(mac string, mac64 uint64, now time.Time) (*Device, error) {
	if d, ok := t.byMAC[mac]; ok {
		d.LatestLocal = now
		d.LatestAny = now
		d.Count++
		d.Hidden = false
		d.TTL = 0
		return d, nil
	}
	if len(t.byMAC) >= t.Capacity {
		return nil, ErrTableFull
	}
	d := NewDevice(mac, mac64, now)
	t.byMAC[mac] = d
	t.order = append(t.order, mac)
	return d, nil
}

// Evict runs the two-stage eviction process (§4.B) and returns the MACs
// physically removed this pass (stage 2 completions). forgetFn, if
// non-nil, is called once per device entering stage 1 so the caller can
// ask the Bluetooth layer to forget it (giving BlueZ time to flush its
// cache, §4.B rationale).
func (t *Table) Evict(now time.Time, forgetFn func(mac string)) []string {
	var removed []string
	remaining := t.order[:0]
	for _, mac := range t.order {
		d, ok := t.byMAC[mac]
		if !ok {
			continue
		}
		stage1 := EvictStage1
		if d.Category == CategoryBeacon {
			stage1 = EvictStage1Beacon
		}
		age := now.Sub(d.LatestLocal)

		switch {
		case !d.Hidden && age > stage1:
			d.Hidden = true
			d.TTL = 0
			if forgetFn != nil {
				forgetFn(mac)
			}
			remaining = append(remaining, mac)
		case d.Hidden && age > stage1+EvictStage2:
			delete(t.byMAC, mac)
			removed = append(removed, mac)
		default:
			remaining = append(remaining, mac)
		}
	}
	t.order = remaining
	return removed
}

// Package closest implements the shared, bounded ring of cross-mesh
// observations described in §3 and §4.G: the single place every sensor's
// view of every device, at every access point, is pooled for the
// aggregator and the column-packing occupancy counter.
package closest

import (
	"time"

	"github.com/houneteam/occusensor/internal/device"
)

// Entry is one (device, access point) observation in the ring.
type Entry struct {
	MAC          string
	AccessPointID int
	Earliest     time.Time
	Latest       time.Time
	Distance     float64
	Category     device.Category
	Count        int
	Name         string
	NameType     device.NameType
	AddressType  device.AddressType
}

// AgeOut thresholds (§4.G): entries older than these are ignored by
// aggregation but not physically removed until the ring overwrites them.
const (
	MaxAge       = 400 * time.Second
	MaxAgeBeacon = 600 * time.Second
)

// Stale reports whether e should be ignored by aggregation at time now.
func (e Entry) Stale(now time.Time) bool {
	limit := MaxAge
	if e.Category == device.CategoryBeacon {
		limit = MaxAgeBeacon
	}
	return now.Sub(e.Latest) > limit
}

// Ring is the bounded ring buffer of Entry values (§4.G "closest[CLOSEST_N]").
// Not concurrency-safe; callers hold the process-wide state lock (§5).
type Ring struct {
	capacity int
	entries  []Entry // append-only until capacity, then overwrite the oldest by Latest
}

// NewRing creates a ring with room for `capacity` entries
// (original source's CLOSEST_N).
func NewRing(capacity int) *Ring {
	return &Ring{capacity: capacity, entries: make([]Entry, 0, capacity)}
}

// Len returns the number of entries currently held (<= capacity).
func (r *Ring) Len() int { return len(r.entries) }

// All returns a snapshot of every entry currently in the ring, in ring
// (insertion/overwrite) order. Callers must not mutate the result.
func (r *Ring) All() []Entry { return r.entries }

// indexOf finds the existing entry for (mac, apID), or -1.
func (r *Ring) indexOf(mac string, apID int) int {
	for i, e := range r.entries {
		if e.MAC == mac && e.AccessPointID == apID {
			return i
		}
	}
	return -1
}

// Add records a fresh observation of device mac at access point apID
// (§4.G "add"). If an entry for the same pair exists it's updated in
// place: earliest is preserved (never moved later), latest only bumps
// forward, and distance/category/name are overwritten with the new
// values. Otherwise a new entry is appended; if the ring is already
// full, the entry with the smallest Latest (the oldest by last-seen
// time, §8 boundary behavior) is evicted to make room.
func (r *Ring) Add(e Entry) {
	if i := r.indexOf(e.MAC, e.AccessPointID); i >= 0 {
		existing := r.entries[i]
		if !existing.Earliest.IsZero() && existing.Earliest.Before(e.Earliest) {
			e.Earliest = existing.Earliest
		}
		if existing.Latest.After(e.Latest) {
			e.Latest = existing.Latest
		}
		r.entries[i] = e
		return
	}
	if len(r.entries) < r.capacity {
		r.entries = append(r.entries, e)
		return
	}
	oldest := 0
	for i := 1; i < len(r.entries); i++ {
		if r.entries[i].Latest.Before(r.entries[oldest].Latest) {
			oldest = i
		}
	}
	r.entries[oldest] = e
}

// LookupLatest performs the reverse scan of §4.G: the most recently
// updated entry for mac, and whether one was found. This is the
// device's "owning" access point — whichever sensor most recently had
// it closest.
func (r *Ring) LookupLatest(mac string) (Entry, bool) {
	var best Entry
	found := false
	for _, e := range r.entries {
		if e.MAC != mac {
			continue
		}
		if !found || e.Latest.After(best.Latest) {
			best = e
			found = true
		}
	}
	return best, found
}

// ForMAC returns every entry for mac, across all access points, in ring
// order. Used by successor inference (§4.H) and the KNN distance vector
// builder (§4.K), both of which need every AP's view of one device.
func (r *Ring) ForMAC(mac string) []Entry {
	var out []Entry
	for _, e := range r.entries {
		if e.MAC == mac {
			out = append(out, e)
		}
	}
	return out
}

// MACs returns the distinct device MACs currently represented in the
// ring, in first-seen order.
func (r *Ring) MACs() []string {
	seen := make(map[string]bool, len(r.entries))
	var out []string
	for _, e := range r.entries {
		if !seen[e.MAC] {
			seen[e.MAC] = true
			out = append(out, e.MAC)
		}
	}
	return out
}

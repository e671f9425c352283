// Package accesspoint implements the sorted registry of mesh access
// points (§3, §4.E) keyed by client_id, plus the per-peer sequence-gap
// counters supplemented from the original source's UDP receive path.
package accesspoint

import (
	"sort"
	"sync"
)

// Environment carries the optional environmental sensor readings a
// peer's access-point message may include (§6, supplemented feature 6).
type Environment struct {
	Temperature float64
	Humidity    float64
	Pressure    float64
	CO2         float64
	VOC         float64
	Brightness  float64
	WiFi        int
	HasReading  bool
}

// AccessPoint is one node participating in the mesh, local or remote.
type AccessPoint struct {
	ID          int // monotonically assigned, stable for process lifetime
	ClientID    string
	Short       string
	Description string
	Platform    string

	RSSIOneMeter   int
	RSSIFactor     float64
	PeopleDistance float64
	APClass        int

	Environment Environment

	lastSeq     int64
	haveSeq     bool
	missedTotal int64
}

// MissedMessages returns the running count of mesh messages inferred
// missing from this peer (§4.E sequence checking).
func (a *AccessPoint) MissedMessages() int64 { return a.missedTotal }

// maxRestartGap is the sequence gap above which we assume the peer
// restarted (and so reset its own counter to 0) rather than dropped
// messages, and do not count it as loss (§4.E: "larger gaps are treated
// as process restarts").
const maxRestartGap = 1_000_000

// observeSequence updates the peer's last-seen sequence number and
// returns the number of messages inferred missed by this datagram, if
// any (§4.E). Must be called with the registry's lock held by the caller.
func (a *AccessPoint) observeSequence(seq int64) int64 {
	if !a.haveSeq {
		a.haveSeq = true
		a.lastSeq = seq
		return 0
	}
	gap := seq - a.lastSeq
	a.lastSeq = seq
	if gap > 1 && gap < maxRestartGap {
		missed := gap - 1
		a.missedTotal += missed
		return missed
	}
	return 0
}

// Registry is the sorted, client_id-keyed set of access points known to
// this process (§4.E). It is not concurrency-safe on its own; callers
// hold the single process-wide mutex described in §5 (internal/state).
type Registry struct {
	mu      sync.Mutex // guards alias only; callers still hold the outer state lock for ap mutation
	byID    map[string]*AccessPoint
	nextID  int
	aliases map[string]string // raw hostname/mac -> canonical client_id
}

// NewRegistry creates an empty access-point registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]*AccessPoint),
		aliases: make(map[string]string),
	}
}

// SetAlias registers a canonical client_id for a raw sensor
// hostname or MAC, consulted by GetOrCreate before lookup.
func (r *Registry) SetAlias(raw, canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[raw] = canonical
}

func (r *Registry) resolve(clientID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if canon, ok := r.aliases[clientID]; ok {
		return canon
	}
	return clientID
}

// GetOrCreate resolves the alias table then returns the access point for
// clientID, creating and assigning it the next sequential id if unseen
// (§4.E).
func (r *Registry) GetOrCreate(clientID string) (ap *AccessPoint, created bool) {
	canonical := r.resolve(clientID)
	if ap, ok := r.byID[canonical]; ok {
		return ap, false
	}
	ap = &AccessPoint{ID: r.nextID, ClientID: canonical}
	r.nextID++
	r.byID[canonical] = ap
	return ap, true
}

// Get returns the access point for clientID without creating one.
func (r *Registry) Get(clientID string) (*AccessPoint, bool) {
	ap, ok := r.byID[r.resolve(clientID)]
	return ap, ok
}

// ByID returns the access point with the given stable numeric id, used
// to map a closest-ring entry's access-point id back to its client_id.
func (r *Registry) ByID(id int) (*AccessPoint, bool) {
	for _, ap := range r.byID {
		if ap.ID == id {
			return ap, true
		}
	}
	return nil, false
}

// All returns every tracked access point sorted by client_id, the
// "sorted linked set" ordering of §4.E.
func (r *Registry) All() []*AccessPoint {
	out := make([]*AccessPoint, 0, len(r.byID))
	for _, ap := range r.byID {
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// ObserveSequence applies §4.E's missed-message accounting for a
// message received from clientID carrying sequence number seq.
func (r *Registry) ObserveSequence(clientID string, seq int64) int64 {
	ap, _ := r.GetOrCreate(clientID)
	return ap.observeSequence(seq)
}

// Stats summarizes missed-message counts per access point, printed by
// cmd/occusensor's periodic logAccessPointStats (supplemented feature 1).
type Stats struct {
	ClientID string
	Missed   int64
}

// MissedStats returns per-AP missed-message totals, sorted by client_id.
func (r *Registry) MissedStats() []Stats {
	aps := r.All()
	out := make([]Stats, 0, len(aps))
	for _, ap := range aps {
		out = append(out, Stats{ClientID: ap.ClientID, Missed: ap.missedTotal})
	}
	return out
}

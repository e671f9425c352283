package snapshot

import "time"

// DefaultMinPeriod and DefaultMaxPeriod are the debounce bounds used
// when a deployment doesn't override them (§4.L step 4).
const (
	DefaultMinPeriod = 5 * time.Minute
	DefaultMaxPeriod = 60 * time.Minute
)

// Emitter decides when a freshly computed snapshot is worth sending to
// the egress channels (§4.L step 4 / S6): at least MinPeriod must have
// elapsed since the last emit AND the content hash must differ, OR
// MaxPeriod has elapsed regardless of whether anything changed.
type Emitter struct {
	MinPeriod time.Duration
	MaxPeriod time.Duration

	lastEmit time.Time
	lastHash uint64
	primed   bool
}

// NewEmitter creates an Emitter with the given debounce bounds.
func NewEmitter(minPeriod, maxPeriod time.Duration) *Emitter {
	return &Emitter{MinPeriod: minPeriod, MaxPeriod: maxPeriod}
}

// ShouldEmit reports whether a snapshot with the given content hash
// should be emitted at time now, and records that decision: a true
// result always resets the debounce clock, a false result never does.
func (e *Emitter) ShouldEmit(now time.Time, hash uint64) bool {
	if !e.primed {
		e.primed = true
		e.lastEmit = now
		e.lastHash = hash
		return true
	}

	sinceLast := now.Sub(e.lastEmit)
	if sinceLast >= e.MaxPeriod {
		e.lastEmit = now
		e.lastHash = hash
		return true
	}
	if sinceLast >= e.MinPeriod && hash != e.lastHash {
		e.lastEmit = now
		e.lastHash = hash
		return true
	}
	return false
}

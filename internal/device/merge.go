package device

import "time"

// SetName applies the monotonic name ladder described in §3: a later value
// only replaces the current one if its NameType is not lower ranked.
func (d *Device) SetName(value string, nt NameType) {
	if value == "" {
		return
	}
	if nt < d.NameType {
		return
	}
	d.Name = value
	d.NameType = nt
}

// categoryUpgradeAllowed captures the small set of explicit upgrade edges from §4.B's
// ladder: unknown -> anything, and phone -> {tv, computer, tablet, watch,
// wearable} when cross-sensor evidence overrides the initial
// Apple-proximity guess. Every other transition is a silent no-op.
func categoryUpgradeAllowed(from, to Category) bool {
	if from == to {
		return false
	}
	if from == CategoryUnknown {
		return to != CategoryUnknown
	}
	if from == CategoryPhone {
		switch to {
		case CategoryTV, CategoryComputer, CategoryTablet, CategoryWatch, CategoryWearable:
			return true
		}
		return false
	}
	return false
}

// SetCategory applies the cross-sensor upgrade ladder (§4.B); downgrades
// and lateral moves are silent no-ops. Used by MergeRemote, where no
// heuristic-authority information crosses the wire.
func (d *Device) SetCategory(to Category) {
	if categoryUpgradeAllowed(d.Category, to) {
		d.Category = to
	}
}

// HeuristicRank orders the §4.C heuristics by authority, weakest first.
// A later heuristic may only override the category set by an earlier one
// if its rank is greater than or equal to the rank that set the current
// value -- this is what lets S2's chain (phone via Apple sub-type, then
// tablet via name, then tv via a more specific name) proceed even though
// the device's category keeps changing.
type HeuristicRank int8

const (
	RankOUI HeuristicRank = iota + 1
	RankIconAppearance
	RankClass
	RankUUID
	RankApple
	RankManufacturer
	RankName
)

// SetCategoryFromHeuristic applies §4.C's per-advertisement category
// contribution, ranked by the authority of the heuristic that produced it.
func (d *Device) SetCategoryFromHeuristic(to Category, rank HeuristicRank) {
	if to == CategoryUnknown {
		return
	}
	if d.Category == CategoryUnknown || rank >= d.categoryRank {
		d.Category = to
		d.categoryRank = rank
	}
}

// RemoteObservation is the subset of mesh wire fields (§6) needed to merge
// a peer's view of a device into our local copy.
type RemoteObservation struct {
	Name             string
	NameType         NameType
	Category         Category
	AddressType      AddressType
	FilteredRSSI     int
	RawRSSI          int
	Distance         float64
	Count            int
	Earliest         time.Time
	Latest           time.Time
	TryConnectState    TryConnectState
	TryConnectAttempts int
	IsTrainingBeacon bool
	Paired, Connected, Trusted bool
}

// MergeRemote folds a peer's observation of the same physical device into
// our local record (§4.B, §9 Open Question #1).
//
// Policy (this is the explicit decision SPEC_FULL.md §6.1 records): every
// field merges monotonically regardless of `safe`, EXCEPT LatestLocal and
// LatestAny, which only ever advance when safe is true (the peer's clock is
// known to agree with ours to within the mesh's zero-skew tolerance).
// Earliest may always move earlier: an earlier first-sighting is safe to
// record no matter whose clock reported it.
func (d *Device) MergeRemote(r RemoteObservation, safe bool) {
	d.SetName(r.Name, r.NameType)
	d.SetCategory(r.Category)

	if d.AddressType == AddressUnknown {
		d.AddressType = r.AddressType
	}

	if !r.Earliest.IsZero() && (d.Earliest.IsZero() || r.Earliest.Before(d.Earliest)) {
		d.Earliest = r.Earliest
	}

	if safe && !r.Latest.IsZero() {
		if r.Latest.After(d.LatestLocal) {
			d.LatestLocal = r.Latest
		}
		if r.Latest.After(d.LatestAny) {
			d.LatestAny = r.Latest
		}
	}

	if r.Count > d.Count {
		d.Count = r.Count
	}

	d.Paired = d.Paired || r.Paired
	d.Connected = d.Connected || r.Connected
	d.Trusted = d.Trusted || r.Trusted
	d.IsTrainingBeacon = d.IsTrainingBeacon || r.IsTrainingBeacon

	if r.TryConnectState > d.TryConnectState {
		d.TryConnectState = r.TryConnectState
	}
	if r.TryConnectAttempts > d.TryConnectAttempts {
		d.TryConnectAttempts = r.TryConnectAttempts
	}
}

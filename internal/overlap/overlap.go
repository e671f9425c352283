// Package overlap implements the "might these two devices be the same
// physical device" predicate shared by successor inference (§4.H) and
// local occupancy column packing (§4.M). Grounded on
// original_source/src/core/overlaps.c's overlapsClosest/overlapsOneWay/
// justABlip trio, adapted to the device/closest types of this module.
package overlap

import (
	"math"
	"time"

	"github.com/houneteam/occusensor/internal/closest"
	"github.com/houneteam/occusensor/internal/device"
)

// View is the subset of device state the compatibility predicate needs,
// independent of which access point observed it.
type View struct {
	MAC         string
	AddressType device.AddressType
	NameType    device.NameType
	Name        string
	Category    device.Category
	Earliest    time.Time
	Latest      time.Time
	Count       int
}

// categoryAllowedToDiffer permits the small set of category pairs Apple
// devices legitimately straddle by advertising multiple personas
// (§4.H).
func categoryAllowedToDiffer(a, b device.Category) bool {
	pairs := [][2]device.Category{
		{device.CategoryPhone, device.CategoryTablet},
		{device.CategoryPhone, device.CategoryWatch},
	}
	for _, p := range pairs {
		if (a == p[0] && b == p[1]) || (a == p[1] && b == p[0]) {
			return true
		}
	}
	return false
}

// finalName reports whether nt is a non-temporary, trustworthy name
// rank (§4.H "final (non-temporary) name_type").
func finalName(nt device.NameType) bool {
	return nt == device.NameAlias || nt >= device.NameKnown
}

// Compatible reports whether a and b could be the same physical device
// based on their identity fields alone (address type, name, category);
// it does not consider per-access-point co-existence or blip timing —
// see CoExisted and JustABlip for those.
func Compatible(a, b View) bool {
	if a.AddressType != device.AddressUnknown && b.AddressType != device.AddressUnknown && a.AddressType != b.AddressType {
		return false
	}
	if a.AddressType == device.AddressPublic || b.AddressType == device.AddressPublic {
		return false
	}
	if finalName(a.NameType) && finalName(b.NameType) && a.Name != b.Name {
		return false
	}
	if a.Category != device.CategoryUnknown && b.Category != device.CategoryUnknown &&
		a.Category != b.Category && !categoryAllowedToDiffer(a.Category, b.Category) {
		return false
	}
	return true
}

// blipMinGap and blipMaxGap bound the "just a blip" window (§4.H): under
// 2s is too fast for the same physical radio to have produced two
// distinct MACs, and over 90s is too slow to call it a rotation rather
// than an unrelated device.
const (
	blipMinGap = 2 * time.Second
	blipMaxGap = 90 * time.Second
)

// JustABlip reports whether one of the two devices was observed only
// once and the gap to the other's nearest boundary is implausible for a
// MAC rotation (§4.H).
func JustABlip(a, b View) bool {
	delta := a.Earliest.Sub(b.Latest)
	if delta < 0 {
		delta = -delta
	}
	if a.Count == 1 && !a.Latest.After(b.Earliest) && (delta < blipMinGap || delta > blipMaxGap) {
		return true
	}
	if b.Count == 1 && !b.Latest.After(a.Earliest) && (delta < blipMinGap || delta > blipMaxGap) {
		return true
	}
	return false
}

// CoExisted reports whether any shared access point observed both
// devices with overlapping time ranges (one device's earliest sighting
// before the other's latest) -- proof they are two separate physical
// radios, since a single rotating MAC can't be in two places at once
// (§4.H "Any per-access-point observation pair... co-existed somewhere").
func CoExisted(aEntries, bEntries []closest.Entry) bool {
	for _, ae := range aEntries {
		for _, be := range bEntries {
			if ae.AccessPointID != be.AccessPointID {
				continue
			}
			if ae.Earliest.Before(be.Latest) && be.Earliest.Before(ae.Latest) {
				return true
			}
		}
	}
	return false
}

// MightSupersede combines every §4.H check: a and b must be identity-
// compatible, must never have co-existed on a shared access point, and
// must not be an implausible blip. a is assumed to have been observed
// no earlier, overall, than b (callers compare in time order).
func MightSupersede(a, b View, aEntries, bEntries []closest.Entry) bool {
	if !Compatible(a, b) {
		return false
	}
	if CoExisted(aEntries, bEntries) {
		return false
	}
	if JustABlip(a, b) {
		return false
	}
	return true
}

// clampProbability bounds a probability score to [0, 1] -- ProbabilityByDistance
// already returns values in that range. Nothing in this module calls it.
func clampProbability(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}

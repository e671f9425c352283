// Package aggregator implements the periodic patch-occupancy tally
// (§4.L): walking the cross-mesh closest table, scoring each device's
// freshness, classifying it to a patch via internal/knn, and
// accumulating weighted per-category totals onto internal/patchmodel.
package aggregator

import (
	"math"
	"time"

	"github.com/houneteam/occusensor/internal/closest"
	"github.com/houneteam/occusensor/internal/device"
	"github.com/houneteam/occusensor/internal/knn"
	"github.com/houneteam/occusensor/internal/overlap"
	"github.com/houneteam/occusensor/internal/patchmodel"
)

// xScale values for the freshness-score decay curve (§4.L step d):
// beacons are expected to be stationary and are given a longer plateau.
const (
	xScaleBeacon  = 160.0
	xScaleDefault = 80.0
)

// FreshnessScore implements §4.L's "plateau-then-decay" curve: ~1.0 for
// fresh observations, falling toward 0 past roughly 4*xScale seconds.
func FreshnessScore(age time.Duration, category device.Category) float64 {
	xScale := xScaleDefault
	if category == device.CategoryBeacon {
		xScale = xScaleBeacon
	}
	ageSeconds := age.Seconds()
	score := 0.55 - math.Atan(ageSeconds/xScale-4)/3
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Run performs one aggregator tick (§4.L): it resets every patch's
// totals, classifies each live, non-superseded device by its latest
// cross-mesh distance vector, and adds its freshness-weighted vote to
// the winning patch. superseded maps a device's MAC to the MAC that
// currently supersedes it (§4.H); a device present as a key is skipped.
func Run(now time.Time, ring *closest.Ring, superseded overlap.Assignment, recordings []knn.Recording, model *patchmodel.Model) {
	model.ResetTotals()

	entries := ring.All()
	// Reverse time order (§4.L step 1): process most-recently-updated
	// entries first so superseded/consumed bookkeeping reflects the
	// freshest observation of each MAC.
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sortByLatestDesc(entries, order)

	consumed := make(map[string]bool, len(entries))
	for _, idx := range order {
		e := entries[idx]
		if consumed[e.MAC] {
			continue
		}
		consumed[e.MAC] = true

		if e.Stale(now) {
			continue
		}
		if _, isSuperseded := superseded[e.MAC]; isSuperseded {
			continue
		}

		vector := make(knn.Vector)
		for _, other := range ring.ForMAC(e.MAC) {
			vector[other.AccessPointID] = other.Distance
		}

		age := now.Sub(e.Latest)
		score := FreshnessScore(age, e.Category)

		result := knn.Classify(recordings, vector)
		if result.Patch == "" {
			continue
		}
		patch, ok := model.Get(result.Patch)
		if !ok {
			continue
		}
		// Simple form (§4.L step f): knn_score is 1 for the winning
		// patch, 0 for every other patch, so only the winner accumulates.
		patch.Totals.Add(e.Category.String(), 1.0*score)
	}
}

func sortByLatestDesc(entries []closest.Entry, order []int) {
	// insertion sort: the ring is small enough (thousands of entries at
	// most) that this is simpler than pulling in sort.Slice with a
	// closure allocation per tick, and matches the teacher's general
	// preference for explicit loops over generic sort plumbing in hot
	// paths.
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && entries[order[j-1]].Latest.Before(entries[order[j]].Latest) {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
}

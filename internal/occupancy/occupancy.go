// Package occupancy implements the local, single-sensor headcount
// (§4.M): packing the devices one access point currently sees into the
// minimum number of "columns" such that no two devices sharing a
// column could be the same physical radio, then deriving a per-range
// phone headcount and a continuous presence metric from the result.
package occupancy

import (
	"time"

	"github.com/houneteam/occusensor/internal/aggregator"
	"github.com/houneteam/occusensor/internal/closest"
	"github.com/houneteam/occusensor/internal/device"
	"github.com/houneteam/occusensor/internal/overlap"
)

// Ranges are the distance buckets the per-range headcount is reported
// at, in meters (§4.M).
var Ranges = []float64{1, 2, 5, 10, 15, 20, 25, 30, 35, 100}

// RecencyWindow bounds how recently a column must have been updated to
// count toward occupancy (§4.M "latest within 5 min").
const RecencyWindow = 5 * time.Minute

// Item is one local device observation considered for column packing:
// its identity view (for the §4.H compatibility checks), its
// per-access-point entries (for co-existence checks), and its most
// recent distance reading (for range bucketing).
type Item struct {
	View     overlap.View
	Entries  []closest.Entry
	Distance float64
}

// columnCompatible reports whether candidate can join a column that
// already holds member without violating the "no overlapping interval,
// same physical device" constraint (§4.M step "pack... AND pass the
// compatibility checks of §4.H").
func columnCompatible(member, candidate Item) bool {
	if member.View.Earliest.Before(candidate.View.Latest) && candidate.View.Earliest.Before(member.View.Latest) {
		return false // overlapping intervals: can't be the same physical device
	}
	return overlap.MightSupersede(member.View, candidate.View, member.Entries, candidate.Entries)
}

// Pack assigns every item to the lowest-numbered column it is
// compatible with every existing member of (§4.M "start all in column
// 0; iteratively bump later-device's column until stable" — a greedy
// first-fit achieves the same fixed point for this constraint shape).
// Items are processed in ascending Earliest order so a column always
// represents one MAC-rotation chain observed across time.
func Pack(items []Item) [][]Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	insertionSortByEarliest(sorted)

	var columns [][]Item
	for _, it := range sorted {
		placed := false
		for c := range columns {
			compatibleWithAll := true
			for _, member := range columns[c] {
				if !columnCompatible(member, it) {
					compatibleWithAll = false
					break
				}
			}
			if compatibleWithAll {
				columns[c] = append(columns[c], it)
				placed = true
				break
			}
		}
		if !placed {
			columns = append(columns, []Item{it})
		}
	}
	return columns
}

func insertionSortByEarliest(items []Item) {
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && items[j].View.Earliest.Before(items[j-1].View.Earliest) {
			items[j-1], items[j] = items[j], items[j-1]
			j--
		}
	}
}

// latestInColumn returns the item with the greatest Latest sighting in
// the column — the reading the headcount bucketing uses (§4.M
// "latest-in-column distance").
func latestInColumn(column []Item) Item {
	best := column[0]
	for _, it := range column[1:] {
		if it.View.Latest.After(best.View.Latest) {
			best = it
		}
	}
	return best
}

// RangeCounts is the per-range phone headcount (§4.M).
type RangeCounts map[float64]int

// Count derives the per-range phone headcount from a packed set of
// columns, at time now (§4.M step 2).
func Count(now time.Time, columns [][]Item) RangeCounts {
	counts := make(RangeCounts, len(Ranges))
	for _, r := range Ranges {
		counts[r] = 0
	}
	for _, col := range columns {
		rep := latestInColumn(col)
		if rep.View.Category != device.CategoryPhone {
			continue
		}
		if now.Sub(rep.View.Latest) > RecencyWindow {
			continue
		}
		for _, r := range Ranges {
			if rep.Distance <= r {
				counts[r]++
			}
		}
	}
	return counts
}

// PeoplePresent computes the continuous presence metric (§4.M step 3):
// every in-range (100m, the widest bucket) phone column contributes its
// §4.L freshness score, so a device that just went quiet fades out of
// the count smoothly rather than stepping to zero.
func PeoplePresent(now time.Time, columns [][]Item) float64 {
	var total float64
	widest := Ranges[len(Ranges)-1]
	for _, col := range columns {
		rep := latestInColumn(col)
		if rep.View.Category != device.CategoryPhone {
			continue
		}
		if rep.Distance > widest {
			continue
		}
		age := now.Sub(rep.View.Latest)
		total += aggregator.FreshnessScore(age, rep.View.Category)
	}
	return total
}

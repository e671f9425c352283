// Package snapshot builds the JSON object every egress channel sends
// downstream (§4.N): per-room and per-group occupancy rollups, a
// per-beacon "where is it now" list, and the debounce gate (§4.L step
// 4) that decides when a freshly computed snapshot is worth emitting.
package snapshot

import (
	"fmt"
	"time"

	"github.com/houneteam/occusensor/internal/patchmodel"
)

// Metadata carries values downstream displays need to interpret the
// snapshot (§4.N "attach metadata: scale factor").
type Metadata struct {
	ScaleFactor   float64 `json:"scale_factor"`
	PeoplePresent float64 `json:"people_present,omitempty"`
}

// RoomSnapshot is the per-room rollup entry (§4.N "per-room array").
type RoomSnapshot struct {
	Room   string                   `json:"room"`
	Totals patchmodel.CategoryTotals `json:"totals"`
}

// GroupSnapshot is the per-group rollup entry (§4.N "per-group array").
type GroupSnapshot struct {
	Group  string                   `json:"group"`
	Totals patchmodel.CategoryTotals `json:"totals"`
}

// BeaconConfig identifies one named beacon from the configuration file
// (§6 "beacons: [{name, mac, alias}]") worth reporting individually.
type BeaconConfig struct {
	Name  string
	MAC   string
	Alias string
}

// BeaconSnapshot is one entry in the per-beacon array: its most recently
// assigned patch and a human-readable age (§4.N "latest assigned patch
// and time-ago string").
type BeaconSnapshot struct {
	Name    string `json:"name"`
	MAC     string `json:"mac"`
	Alias   string `json:"alias,omitempty"`
	Patch   string `json:"patch,omitempty"`
	TimeAgo string `json:"time_ago"`
	Seen    bool   `json:"seen"`
}

// Snapshot is the full JSON object served to every egress channel.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Rooms       []RoomSnapshot   `json:"rooms"`
	Groups      []GroupSnapshot  `json:"groups"`
	Beacons     []BeaconSnapshot `json:"beacons"`
	Metadata    Metadata         `json:"metadata"`
}

// PatchLookup resolves a beacon's MAC to its most recently classified
// patch and the time it was last seen, if any (supplied by the caller
// so this package stays independent of the device table/closest ring).
type PatchLookup func(mac string) (patch string, lastSeen time.Time, ok bool)

// Build assembles a Snapshot from the current patch model and the
// configured named beacons (§4.N). peoplePresent is the continuous
// occupancy metric from internal/occupancy.PeoplePresent, attached to
// the snapshot's metadata for downstream displays.
func Build(now time.Time, model *patchmodel.Model, beacons []BeaconConfig, lookup PatchLookup, scaleFactor, peoplePresent float64) Snapshot {
	roomSummaries := model.SummarizeByRoom()
	rooms := make([]RoomSnapshot, len(roomSummaries))
	for i, r := range roomSummaries {
		rooms[i] = RoomSnapshot{Room: r.Room, Totals: r.Totals}
	}

	groupSummaries := model.SummarizeByGroup()
	groups := make([]GroupSnapshot, len(groupSummaries))
	for i, g := range groupSummaries {
		groups[i] = GroupSnapshot{Group: g.Group, Totals: g.Totals}
	}

	beaconSnapshots := make([]BeaconSnapshot, len(beacons))
	for i, b := range beacons {
		entry := BeaconSnapshot{Name: b.Name, MAC: b.MAC, Alias: b.Alias}
		if patch, lastSeen, ok := lookup(b.MAC); ok {
			entry.Patch = patch
			entry.TimeAgo = timeAgo(now.Sub(lastSeen))
			entry.Seen = true
		} else {
			entry.TimeAgo = "never"
		}
		beaconSnapshots[i] = entry
	}

	return Snapshot{
		GeneratedAt: now,
		Rooms:       rooms,
		Groups:      groups,
		Beacons:     beaconSnapshots,
		Metadata:    Metadata{ScaleFactor: scaleFactor, PeoplePresent: peoplePresent},
	}
}

func timeAgo(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

package snapshot

import (
	"testing"
	"time"

	"github.com/houneteam/occusensor/internal/patchmodel"
)

func TestBuildRollsUpRoomsAndGroups(t *testing.T) {
	model := patchmodel.NewModel()
	kitchen := model.GetOrCreate("Kitchen", "Main", "House", "", true)
	kitchen.Totals.Add("phone", 2.0)
	hallway := model.GetOrCreate("Hallway", "Main", "House", "", true)
	hallway.Totals.Add("phone", 1.0)

	now := time.Now()
	snap := Build(now, model, nil, func(string) (string, time.Time, bool) { return "", time.Time{}, false }, 1.0, 0)

	if len(snap.Rooms) != 1 {
		t.Fatalf("expected 1 room (both patches share it), got %d", len(snap.Rooms))
	}
	if snap.Rooms[0].Totals.Phone != 3.0 {
		t.Fatalf("expected combined phone total 3.0, got %v", snap.Rooms[0].Totals.Phone)
	}
	if len(snap.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(snap.Groups))
	}
}

func TestBuildReportsBeaconLastSeen(t *testing.T) {
	model := patchmodel.NewModel()
	now := time.Now()
	beacons := []BeaconConfig{{Name: "Badge1", MAC: "aa:bb:cc:dd:ee:ff", Alias: "Reception Badge"}}

	lookup := func(mac string) (string, time.Time, bool) {
		if mac == "aa:bb:cc:dd:ee:ff" {
			return "Kitchen", now.Add(-90 * time.Second), true
		}
		return "", time.Time{}, false
	}

	snap := Build(now, model, beacons, lookup, 1.0, 0)
	if len(snap.Beacons) != 1 {
		t.Fatalf("expected 1 beacon entry, got %d", len(snap.Beacons))
	}
	b := snap.Beacons[0]
	if !b.Seen || b.Patch != "Kitchen" {
		t.Fatalf("expected beacon seen at Kitchen, got %+v", b)
	}
	if b.TimeAgo != "1m ago" {
		t.Fatalf("expected '1m ago', got %q", b.TimeAgo)
	}
}

func TestBuildMarksUnseenBeaconNever(t *testing.T) {
	snap := Build(time.Now(), patchmodel.NewModel(),
		[]BeaconConfig{{Name: "Ghost", MAC: "00:00:00:00:00:00"}},
		func(string) (string, time.Time, bool) { return "", time.Time{}, false }, 1.0, 0)
	if snap.Beacons[0].Seen || snap.Beacons[0].TimeAgo != "never" {
		t.Fatalf("expected unseen beacon, got %+v", snap.Beacons[0])
	}
}

func TestBuildAttachesPeoplePresentMetadata(t *testing.T) {
	snap := Build(time.Now(), patchmodel.NewModel(), nil,
		func(string) (string, time.Time, bool) { return "", time.Time{}, false }, 1.0, 4.5)
	if snap.Metadata.PeoplePresent != 4.5 {
		t.Fatalf("PeoplePresent = %v, want 4.5", snap.Metadata.PeoplePresent)
	}
}

func TestEmitterS6DebounceScenario(t *testing.T) {
	base := time.Unix(0, 0)
	e := NewEmitter(60*time.Second, 600*time.Second)

	if !e.ShouldEmit(base, 1) {
		t.Fatal("expected first snapshot to always emit")
	}
	if e.ShouldEmit(base.Add(30*time.Second), 1) {
		t.Fatal("expected no emit at t=30s: min period not elapsed")
	}
	if !e.ShouldEmit(base.Add(90*time.Second), 2) {
		t.Fatal("expected emit at t=90s: min elapsed and hash changed")
	}
	if !e.ShouldEmit(base.Add(690*time.Second), 2) {
		t.Fatal("expected emit at t=690s: max period elapsed regardless of hash")
	}
}

func TestEmitterSuppressesUnchangedWithinMinPeriod(t *testing.T) {
	base := time.Unix(0, 0)
	e := NewEmitter(5*time.Minute, 60*time.Minute)
	e.ShouldEmit(base, 42)
	if e.ShouldEmit(base.Add(time.Minute), 42) {
		t.Fatal("expected no emit: unchanged hash within min period")
	}
}

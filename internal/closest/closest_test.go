package closest

import (
	"testing"
	"time"

	"github.com/houneteam/occusensor/internal/device"
)

func TestAddUpdatesExistingPairInPlace(t *testing.T) {
	r := NewRing(8)
	base := time.Now()
	r.Add(Entry{MAC: "aa:bb", AccessPointID: 1, Earliest: base, Latest: base, Distance: 5.0})
	r.Add(Entry{MAC: "aa:bb", AccessPointID: 1, Earliest: base.Add(time.Second), Latest: base.Add(10 * time.Second), Distance: 4.0})

	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1 (same pair should update in place)", r.Len())
	}
	e, ok := r.LookupLatest("aa:bb")
	if !ok {
		t.Fatal("expected entry")
	}
	if !e.Earliest.Equal(base) {
		t.Fatal("earliest must be preserved, not moved later")
	}
	if !e.Latest.Equal(base.Add(10 * time.Second)) {
		t.Fatal("latest should bump forward")
	}
	if e.Distance != 4.0 {
		t.Fatalf("distance = %v, want overwritten to 4.0", e.Distance)
	}
}

func TestAddEvictsSmallestLatestWhenFull(t *testing.T) {
	r := NewRing(2)
	base := time.Now()
	r.Add(Entry{MAC: "aa", AccessPointID: 1, Latest: base})
	r.Add(Entry{MAC: "bb", AccessPointID: 1, Latest: base.Add(time.Minute)})
	r.Add(Entry{MAC: "cc", AccessPointID: 1, Latest: base.Add(2 * time.Minute)})

	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if _, ok := r.LookupLatest("aa"); ok {
		t.Fatal("oldest entry (smallest latest) should have been evicted")
	}
	if _, ok := r.LookupLatest("cc"); !ok {
		t.Fatal("newest entry should still be present")
	}
}

func TestLookupLatestPicksMostRecentAcrossAPs(t *testing.T) {
	r := NewRing(8)
	base := time.Now()
	r.Add(Entry{MAC: "aa", AccessPointID: 1, Latest: base})
	r.Add(Entry{MAC: "aa", AccessPointID: 2, Latest: base.Add(5 * time.Second)})

	e, ok := r.LookupLatest("aa")
	if !ok || e.AccessPointID != 2 {
		t.Fatalf("expected ap 2 to own the device, got %+v ok=%v", e, ok)
	}
}

func TestStaleUsesBeaconThreshold(t *testing.T) {
	now := time.Now()
	beacon := Entry{Category: device.CategoryBeacon, Latest: now.Add(-500 * time.Second)}
	phone := Entry{Category: device.CategoryPhone, Latest: now.Add(-500 * time.Second)}
	if beacon.Stale(now) {
		t.Fatal("beacon entry within 600s should not be stale")
	}
	if !phone.Stale(now) {
		t.Fatal("non-beacon entry past 400s should be stale")
	}
}

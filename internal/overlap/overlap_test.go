package overlap

import (
	"testing"
	"time"

	"github.com/houneteam/occusensor/internal/closest"
	"github.com/houneteam/occusensor/internal/device"
	"github.com/houneteam/occusensor/internal/knn"
)

func TestCompatibleRejectsDifferentPublicAddressTypes(t *testing.T) {
	a := View{AddressType: device.AddressPublic, Category: device.CategoryUnknown}
	b := View{AddressType: device.AddressPublic, Category: device.CategoryUnknown}
	if Compatible(a, b) {
		t.Fatal("two public-address devices can never be the same rotating MAC")
	}
}

func TestCompatibleAllowsPhoneTabletStraddle(t *testing.T) {
	a := View{AddressType: device.AddressRandom, Category: device.CategoryPhone}
	b := View{AddressType: device.AddressRandom, Category: device.CategoryTablet}
	if !Compatible(a, b) {
		t.Fatal("phone/tablet category straddle should be allowed")
	}
}

func TestCompatibleRejectsUnrelatedCategories(t *testing.T) {
	a := View{AddressType: device.AddressRandom, Category: device.CategoryPhone}
	b := View{AddressType: device.AddressRandom, Category: device.CategoryTV}
	if Compatible(a, b) {
		t.Fatal("phone/tv cannot be the same device")
	}
}

func TestCompatibleRejectsDifferentFinalNames(t *testing.T) {
	a := View{AddressType: device.AddressRandom, NameType: device.NameKnown, Name: "Bob"}
	b := View{AddressType: device.AddressRandom, NameType: device.NameKnown, Name: "Alice"}
	if Compatible(a, b) {
		t.Fatal("two devices with different well-known names cannot be the same")
	}
}

func TestJustABlipRejectsTooCloseOrTooFar(t *testing.T) {
	base := time.Now()
	a := View{Count: 1, Earliest: base, Latest: base}
	bClose := View{Count: 5, Earliest: base.Add(500 * time.Millisecond), Latest: base.Add(time.Second)}
	if !JustABlip(a, bClose) {
		t.Fatal("single observation less than 2s from the other device should be a blip")
	}

	bFar := View{Count: 5, Earliest: base.Add(200 * time.Second), Latest: base.Add(250 * time.Second)}
	aFar := View{Count: 1, Earliest: base, Latest: base}
	if !JustABlip(aFar, bFar) {
		t.Fatal("single observation more than 90s from the other device should be a blip")
	}
}

func TestJustABlipAcceptsPlausibleGap(t *testing.T) {
	base := time.Now()
	a := View{Count: 1, Earliest: base.Add(5 * time.Second), Latest: base.Add(5 * time.Second)}
	b := View{Count: 10, Earliest: base, Latest: base}
	if JustABlip(a, b) {
		t.Fatal("a 5s gap is within the plausible rotation window")
	}
}

func TestCoExistedDetectsOverlapOnSharedAP(t *testing.T) {
	base := time.Now()
	aEntries := []closest.Entry{{AccessPointID: 1, Earliest: base, Latest: base.Add(10 * time.Second)}}
	bEntries := []closest.Entry{{AccessPointID: 1, Earliest: base.Add(5 * time.Second), Latest: base.Add(15 * time.Second)}}
	if !CoExisted(aEntries, bEntries) {
		t.Fatal("overlapping ranges on the same access point means they coexisted")
	}
}

func TestCoExistedIgnoresDifferentAPs(t *testing.T) {
	base := time.Now()
	aEntries := []closest.Entry{{AccessPointID: 1, Earliest: base, Latest: base.Add(10 * time.Second)}}
	bEntries := []closest.Entry{{AccessPointID: 2, Earliest: base, Latest: base.Add(10 * time.Second)}}
	if CoExisted(aEntries, bEntries) {
		t.Fatal("overlapping ranges on different access points prove nothing")
	}
}

// TestRunPassMACRotationScenario is S3 from the specification: device A
// stops, device B starts 2s later with closely matching distances; A
// should end up superseded by B.
func TestRunPassMACRotationScenario(t *testing.T) {
	base := time.Now()
	aLatest := base.Add(60 * time.Second)
	bEarliest := aLatest.Add(2 * time.Second)
	bLatest := bEarliest.Add(60 * time.Second)

	a := Candidate{
		MAC: "aa:aa:aa:aa:aa:aa",
		View: View{
			AddressType: device.AddressRandom,
			NameType:    device.NameInitial,
			Category:    device.CategoryUnknown,
			Earliest:    base,
			Latest:      aLatest,
			Count:       10,
		},
		Vector: knn.Vector{1: 3.0, 2: 8.0},
		Entries: []closest.Entry{
			{AccessPointID: 1, Earliest: base, Latest: aLatest},
			{AccessPointID: 2, Earliest: base, Latest: aLatest},
		},
	}
	b := Candidate{
		MAC: "bb:bb:bb:bb:bb:bb",
		View: View{
			AddressType: device.AddressRandom,
			NameType:    device.NameInitial,
			Category:    device.CategoryUnknown,
			Earliest:    bEarliest,
			Latest:      bLatest,
			Count:       10,
		},
		Vector: knn.Vector{1: 3.1, 2: 8.1},
		Entries: []closest.Entry{
			{AccessPointID: 1, Earliest: bEarliest, Latest: bLatest},
			{AccessPointID: 2, Earliest: bEarliest, Latest: bLatest},
		},
	}

	assignment := RunPass([]Candidate{a, b})
	if assignment[a.MAC] != b.MAC {
		t.Fatalf("expected A superseded by B, got assignment=%v", assignment)
	}
	if _, claimed := assignment[b.MAC]; claimed {
		t.Fatal("B should not itself be superseded")
	}
}

package device

import (
	"testing"
	"time"
)

func TestObserveNewDeviceInitializesTemporalFields(t *testing.T) {
	tbl := NewTable(2)
	now := time.Now()
	d, err := tbl.Observe("aa:bb:cc:dd:ee:01", 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Earliest != now || d.LatestLocal != now || d.LatestAny != now {
		t.Fatal("new device temporal fields should all be 'now'")
	}
	if d.Count != 1 {
		t.Fatalf("count = %d, want 1", d.Count)
	}
	if d.FilteredRSSI.Ready() {
		t.Fatal("filters should be unset for a freshly observed device")
	}
}

func TestObserveTableFull(t *testing.T) {
	tbl := NewTable(1)
	now := time.Now()
	if _, err := tbl.Observe("aa:bb:cc:dd:ee:01", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tbl.Observe("aa:bb:cc:dd:ee:02", 2, now); err != ErrTableFull {
		t.Fatalf("err = %v, want ErrTableFull", err)
	}
	// Re-observing the existing MAC still succeeds even at capacity.
	if _, err := tbl.Observe("aa:bb:cc:dd:ee:01", 1, now.Add(time.Second)); err != nil {
		t.Fatalf("re-observe existing mac: %v", err)
	}
}

func TestEvictTwoStage(t *testing.T) {
	tbl := NewTable(8)
	base := time.Now()
	_, _ = tbl.Observe("aa:bb:cc:dd:ee:01", 1, base)

	// Well before stage 1: nothing happens.
	removed := tbl.Evict(base.Add(30*time.Second), nil)
	if len(removed) != 0 {
		t.Fatalf("unexpected removal before stage1: %v", removed)
	}
	if _, ok := tbl.Get("aa:bb:cc:dd:ee:01"); !ok {
		t.Fatal("device should still be tracked")
	}

	// Past stage 1 (2min): device enters hidden state, not yet removed.
	var forgotten []string
	tbl.Evict(base.Add(EvictStage1+time.Second), func(mac string) { forgotten = append(forgotten, mac) })
	if len(forgotten) != 1 {
		t.Fatalf("expected forget callback once, got %v", forgotten)
	}
	if _, ok := tbl.Get("aa:bb:cc:dd:ee:01"); !ok {
		t.Fatal("device should still be tracked mid stage1->stage2")
	}

	// Past stage1+stage2: removed from table.
	removed = tbl.Evict(base.Add(EvictStage1+EvictStage2+time.Second), nil)
	if len(removed) != 1 || removed[0] != "aa:bb:cc:dd:ee:01" {
		t.Fatalf("expected removal, got %v", removed)
	}
	if _, ok := tbl.Get("aa:bb:cc:dd:ee:01"); ok {
		t.Fatal("device should be gone from table")
	}
}

func TestCategoryUpgradeLadderCrossSensor(t *testing.T) {
	d := NewDevice("aa:bb:cc:dd:ee:01", 1, time.Now())
	d.SetCategory(CategoryPhone)
	if d.Category != CategoryPhone {
		t.Fatalf("unknown->phone should be allowed, got %v", d.Category)
	}
	d.SetCategory(CategoryTV)
	if d.Category != CategoryTV {
		t.Fatalf("phone->tv should be allowed, got %v", d.Category)
	}
	d.SetCategory(CategoryPhone)
	if d.Category != CategoryTV {
		t.Fatal("tv->phone is a downgrade and must be a silent no-op")
	}
}

// TestCategoryUpgradeLadderHeuristicChain exercises S2: successive local
// heuristics may keep revising category as long as each new signal's
// authority is at least as strong as whatever set the current value.
func TestCategoryUpgradeLadderHeuristicChain(t *testing.T) {
	d := NewDevice("aa:bb:cc:dd:ee:01", 1, time.Now())
	d.SetCategoryFromHeuristic(CategoryPhone, RankApple) // nearby-info, status byte indicates phone use
	if d.Category != CategoryPhone {
		t.Fatalf("unknown->phone via apple heuristic, got %v", d.Category)
	}
	d.SetCategoryFromHeuristic(CategoryTablet, RankName) // name "iPad"
	if d.Category != CategoryTablet {
		t.Fatalf("phone->tablet via stronger name heuristic, got %v", d.Category)
	}
	d.SetCategoryFromHeuristic(CategoryTV, RankName) // name "AppleTV"
	if d.Category != CategoryTV {
		t.Fatalf("tablet->tv via equally strong name heuristic, got %v", d.Category)
	}
	d.SetCategoryFromHeuristic(CategoryPhone, RankOUI) // weak signal must not undo it
	if d.Category != CategoryTV {
		t.Fatal("weaker heuristic must not override a stronger prior category")
	}
}

func TestNameTypeMonotonic(t *testing.T) {
	d := NewDevice("aa:bb:cc:dd:ee:01", 1, time.Now())
	d.SetName("Beacon", NameGeneric)
	d.SetName("", NameKnown) // empty value must not downgrade or clear
	if d.NameType != NameGeneric {
		t.Fatalf("empty name update should be ignored, got type=%v", d.NameType)
	}
	d.SetName("unknown-lower-rank", NameInitial)
	if d.NameType != NameGeneric {
		t.Fatal("name_type must never decrease")
	}
	d.SetName("iPhone", NameDevice)
	if d.NameType != NameDevice || d.Name != "iPhone" {
		t.Fatalf("expected upgrade to device-ranked name, got %v %v", d.Name, d.NameType)
	}
}

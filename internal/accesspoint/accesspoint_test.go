package accesspoint

import "testing"

func TestGetOrCreateAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry()
	a, created := r.GetOrCreate("sensor-1")
	if !created || a.ID != 0 {
		t.Fatalf("first ap: created=%v id=%d, want true/0", created, a.ID)
	}
	b, created := r.GetOrCreate("sensor-2")
	if !created || b.ID != 1 {
		t.Fatalf("second ap: created=%v id=%d, want true/1", created, b.ID)
	}
	a2, created := r.GetOrCreate("sensor-1")
	if created || a2 != a {
		t.Fatal("re-fetching existing client_id should not create a new entry")
	}
}

func TestAliasResolvesBeforeLookup(t *testing.T) {
	r := NewRegistry()
	canon, _ := r.GetOrCreate("living-room")
	r.SetAlias("aa:bb:cc:dd:ee:ff", "living-room")
	aliased, created := r.GetOrCreate("aa:bb:cc:dd:ee:ff")
	if created || aliased != canon {
		t.Fatal("aliased hostname should resolve to the existing canonical ap")
	}
}

func TestObserveSequenceCountsGapNotRestart(t *testing.T) {
	r := NewRegistry()
	if missed := r.ObserveSequence("s1", 10); missed != 0 {
		t.Fatalf("first sequence observed should never count as missed, got %d", missed)
	}
	if missed := r.ObserveSequence("s1", 13); missed != 2 {
		t.Fatalf("gap of 3 should count 2 missed, got %d", missed)
	}
	// A huge jump looks like the peer restarted; not counted as loss.
	if missed := r.ObserveSequence("s1", 13+maxRestartGap+5); missed != 0 {
		t.Fatalf("large gap should be treated as restart, got %d missed", missed)
	}
	ap, _ := r.Get("s1")
	if ap.MissedMessages() != 2 {
		t.Fatalf("cumulative missed = %d, want 2", ap.MissedMessages())
	}
}

func TestAllSortedByClientID(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate("zebra")
	r.GetOrCreate("alpha")
	r.GetOrCreate("mike")
	all := r.All()
	if len(all) != 3 || all[0].ClientID != "alpha" || all[2].ClientID != "zebra" {
		t.Fatalf("expected sorted client ids, got %v", all)
	}
}

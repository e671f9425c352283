package knn

import (
	"math"
	"testing"
)

func TestDistanceSingleSensor(t *testing.T) {
	rec := Vector{1: 5.0}
	obs := Vector{1: 8.0}
	d := Distance(rec, obs)
	want := 3.0 / 30.0
	if math.Abs(d-want) > 1e-9 {
		t.Fatalf("distance = %v, want %v", d, want)
	}
}

func TestDistanceNoCommonAPsIsInfinite(t *testing.T) {
	if d := Distance(Vector{1: 1.0}, Vector{2: 1.0}); !math.IsInf(d, 1) {
		t.Fatalf("distance with no overlap = %v, want +Inf", d)
	}
}

// TestClassifyTwoSensorScenario is S4 from the specification: two access
// points, recordings for Kitchen and LivingRoom, live observation closer
// to Kitchen.
func TestClassifyTwoSensorScenario(t *testing.T) {
	recordings := []Recording{
		{Patch: "Kitchen", Vector: Vector{1: 2.0, 2: 7.0}},
		{Patch: "LivingRoom", Vector: Vector{1: 7.0, 2: 2.0}},
	}
	obs := Vector{1: 2.5, 2: 6.5}
	result := Classify(recordings, obs)
	if result.Patch != "Kitchen" {
		t.Fatalf("patch = %q, want Kitchen", result.Patch)
	}
	if result.BestDistance >= 1.0 {
		t.Fatalf("best_distance = %v, want < 1.0", result.BestDistance)
	}
}

func TestClassifyExactMatchIsIdentity(t *testing.T) {
	recordings := []Recording{
		{Patch: "Kitchen", Vector: Vector{1: 2.0, 2: 7.0}},
		{Patch: "LivingRoom", Vector: Vector{1: 7.0, 2: 2.0}},
		{Patch: "Hallway", Vector: Vector{1: 4.0, 2: 4.0}},
	}
	for _, rec := range recordings {
		result := Classify(recordings, rec.Vector)
		if result.Patch != rec.Patch {
			t.Fatalf("exact match for %s classified as %s", rec.Patch, result.Patch)
		}
	}
}

func TestShouldHarvest(t *testing.T) {
	if ShouldHarvest(6.0, false) {
		t.Fatal("non-training-beacon should never be harvested")
	}
	if !ShouldHarvest(6.0, true) {
		t.Fatal("poor match on a training beacon should be harvested")
	}
	if ShouldHarvest(1.0, true) {
		t.Fatal("good match should not be harvested")
	}
}

func TestProbabilityByDistanceDecaysWithDistance(t *testing.T) {
	close := ProbabilityByDistance(Vector{1: 3.0, 2: 8.0}, Vector{1: 3.1, 2: 8.1})
	far := ProbabilityByDistance(Vector{1: 3.0, 2: 8.0}, Vector{1: 20.0, 2: 1.0})
	if close <= far {
		t.Fatalf("closer vectors should score higher probability: close=%v far=%v", close, far)
	}
	if close <= SupersedeThreshold {
		t.Fatalf("near-identical vectors should clear the supersede threshold, got %v", close)
	}
}

package overlap

import (
	"sort"

	"github.com/houneteam/occusensor/internal/closest"
	"github.com/houneteam/occusensor/internal/knn"
)

// Candidate is one device considered during a successor-inference pass
// (§4.H): its identity view, its latest per-access-point distance
// vector (for probability scoring), and its raw closest-ring entries
// (for the co-existence check).
type Candidate struct {
	MAC     string
	View    View
	Vector  knn.Vector
	Entries []closest.Entry
}

// Assignment is the result of one successor-inference pass: for each B
// that was claimed, the A that superseded it.
type Assignment map[string]string // B.MAC -> A.MAC

// RunPass implements §4.H's full algorithm over the current set of
// candidates, assumed sorted so that candidates[i] was observed no
// earlier overall than candidates[j] for i > j (i.e. most-recent last
// is NOT required; this function sorts internally by Latest ascending
// and only ever considers a later device A claiming an earlier device
// B). Each A claims at most the single highest-probability B that
// exceeds knn.SupersedeThreshold; ties broken by probability, earliest
// candidate in iteration order wins on an exact tie.
func RunPass(candidates []Candidate) Assignment {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].View.Latest.Before(sorted[j].View.Latest) })

	claimedB := make(map[string]bool, len(sorted))
	assignment := make(Assignment, len(sorted))

	// Later devices are candidate successors (A); scan each against every
	// strictly-earlier device (B) not yet claimed.
	for i := len(sorted) - 1; i >= 0; i-- {
		a := sorted[i]
		bestB := ""
		bestProb := 0.0
		for j := i - 1; j >= 0; j-- {
			b := sorted[j]
			if claimedB[b.MAC] {
				continue
			}
			if !MightSupersede(a.View, b.View, a.Entries, b.Entries) {
				continue
			}
			prob := knn.ProbabilityByDistance(a.Vector, b.Vector)
			if prob > knn.SupersedeThreshold && prob > bestProb {
				bestProb = prob
				bestB = b.MAC
			}
		}
		if bestB != "" {
			assignment[bestB] = a.MAC
			claimedB[bestB] = true
		}
	}
	return assignment
}

// Changed returns the set of MACs whose assignment differs between two
// passes (§4.H "Stability rule"). It only computes that set; no mesh
// message is built or sent from it.
func Changed(previous, current Assignment) []string {
	var out []string
	seen := make(map[string]bool)
	for mac, a := range previous {
		if current[mac] != a {
			out = append(out, mac)
		}
		seen[mac] = true
	}
	for mac := range current {
		if !seen[mac] {
			out = append(out, mac)
		}
	}
	sort.Strings(out)
	return out
}

package patchmodel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/houneteam/occusensor/internal/knn"
)

// recordLine is the on-disk shape of one JSONL line (§6 "Recording
// JSONL"): either a header establishing the current patch, or a sample
// appending a training distance vector to it.
type recordLine struct {
	Patch     string             `json:"patch,omitempty"`
	Room      string             `json:"room,omitempty"`
	Group     string             `json:"group,omitempty"`
	Tags      string             `json:"tags,omitempty"`
	Distances map[string]float64 `json:"distances,omitempty"`
}

// Store holds every loaded recording (§4.I-J), ready to hand to
// internal/knn.Classify (the recording files use client_id strings; the
// live runtime indexes access points by integer id, so LoadDir
// translates them at load time via its apIndex argument).
type Store struct {
	model      *Model
	recordings []knn.Recording
}

// NewStore wraps a Model with a recording list.
func NewStore(model *Model) *Store {
	return &Store{model: model}
}

// Recordings returns every loaded recording.
func (s *Store) Recordings() []knn.Recording { return s.recordings }

// LoadDir walks every *.jsonl file directly under dir (both
// `recordings/` and `beacons/` per §4.J) and loads its records, tagging
// every recording from this directory with `confirmed`. apIndex maps a
// recording file's client_id strings to the live access-point integer
// ids used everywhere else in this process.
func (s *Store) LoadDir(dir string, confirmed bool, apIndex map[string]int) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil // §7 "Configuration missing: log, run with empty config"
	}
	if err != nil {
		return fmt.Errorf("patchmodel: read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		if err := s.loadFile(filepath.Join(dir, entry.Name()), confirmed, apIndex); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadFile(path string, confirmed bool, apIndex map[string]int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("patchmodel: open %s: %w", path, err)
	}
	defer f.Close()

	var current *Patch
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var rec recordLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue // malformed line: skip, matching §7's "warn, drop, continue" philosophy
		}
		if rec.Patch != "" {
			current = s.model.GetOrCreate(rec.Patch, rec.Room, rec.Group, rec.Tags, confirmed)
			continue
		}
		if rec.Distances != nil && current != nil {
			vec := make(knn.Vector, len(rec.Distances))
			for clientID, meters := range rec.Distances {
				if id, ok := apIndex[clientID]; ok {
					vec[id] = meters
				}
			}
			s.recordings = append(s.recordings, knn.Recording{
				Patch:     current.Name,
				Vector:    vec,
				Confirmed: confirmed,
			})
		}
	}
	return scanner.Err()
}

// Harvest appends a candidate training sample for deviceName to
// beacons/<deviceName>.jsonl (§4.K feedback): a poor KNN match on a
// training beacon is logged for an operator to later confirm by moving
// it into recordings/.
func Harvest(beaconsDir, deviceName string, vector map[string]float64) error {
	if err := os.MkdirAll(beaconsDir, 0o755); err != nil {
		return fmt.Errorf("patchmodel: mkdir %s: %w", beaconsDir, err)
	}
	safe := sanitizeFileName(deviceName)
	path := filepath.Join(beaconsDir, safe+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("patchmodel: open %s: %w", path, err)
	}
	defer f.Close()

	body, err := json.Marshal(recordLine{Distances: vector})
	if err != nil {
		return err
	}
	_, err = f.Write(append(body, '\n'))
	return err
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")
	return replacer.Replace(name)
}

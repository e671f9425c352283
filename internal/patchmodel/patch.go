// Package patchmodel implements the patch/room/group location model and
// the JSONL recording store (§4.I-J). Grounded on
// original_source/src/model/rooms.h (patch/group shape, get_or_create
// semantics) and rooms.c (the Near/Far fallback, supplemented feature 4).
package patchmodel

import (
	"fmt"
)

// CategoryTotals accumulates per-category weighted occupancy for one
// patch, the mutable half of the original source's struct patch
// (§4.L "category-specific total").
type CategoryTotals struct {
	Phone    float64
	Tablet   float64
	Computer float64
	Watch    float64
	Wearable float64
	Covid    float64
	Beacon   float64
	Other    float64
}

// Add accumulates weight into the bucket matching category's display
// name, falling back to Other for anything unrecognized.
func (c *CategoryTotals) Add(categoryName string, weight float64) {
	switch categoryName {
	case "phone":
		c.Phone += weight
	case "tablet":
		c.Tablet += weight
	case "computer":
		c.Computer += weight
	case "watch":
		c.Watch += weight
	case "wearable":
		c.Wearable += weight
	case "covid":
		c.Covid += weight
	case "beacon":
		c.Beacon += weight
	default:
		c.Other += weight
	}
}

// Sum returns the total weighted occupancy across every category.
func (c CategoryTotals) Sum() float64 {
	return c.Phone + c.Tablet + c.Computer + c.Watch + c.Wearable + c.Covid + c.Beacon + c.Other
}

// Patch is a location fingerprint: a small area with characteristic
// distances from each access point (§3, §4.I).
type Patch struct {
	Name      string
	Room      string
	Group     string
	Tags      string
	Confirmed bool

	Totals CategoryTotals // reset every aggregator tick (§4.L)
}

// Model is the persistent set of patches, keyed by name, plus the group
// membership each patch records. Patches persist for the process
// lifetime; only their Totals are ephemeral per tick.
type Model struct {
	patches map[string]*Patch
}

// NewModel creates an empty patch model.
func NewModel() *Model {
	return &Model{patches: make(map[string]*Patch)}
}

// NewDefault synthesizes the two-patch Near/Far fallback used when no
// patch configuration is found (§7 "Configuration missing",
// supplemented feature 4, grounded on original_source/rooms.c's
// built-in fallback).
func NewDefault() *Model {
	m := NewModel()
	m.GetOrCreate("Near", "Default Room", "Default Group", "", true)
	m.GetOrCreate("Far", "Default Room", "Default Group", "", true)
	return m
}

// GetOrCreate returns the named patch, creating it (and recording its
// room/group/tags) if unseen (§4.I "get_or_create_patch"). Room/group/
// tags on an existing patch are left unchanged; patches are identified
// by name alone.
func (m *Model) GetOrCreate(name, room, group, tags string, confirmed bool) *Patch {
	if p, ok := m.patches[name]; ok {
		return p
	}
	p := &Patch{Name: name, Room: room, Group: group, Tags: tags, Confirmed: confirmed}
	m.patches[name] = p
	return p
}

// Get returns the named patch without creating it.
func (m *Model) Get(name string) (*Patch, bool) {
	p, ok := m.patches[name]
	return p, ok
}

// All returns every patch, in no particular order.
func (m *Model) All() []*Patch {
	out := make([]*Patch, 0, len(m.patches))
	for _, p := range m.patches {
		out = append(out, p)
	}
	return out
}

// ResetTotals zeroes every patch's accumulated category totals, called
// at the start of each aggregator tick (§4.L step 1).
func (m *Model) ResetTotals() {
	for _, p := range m.patches {
		p.Totals = CategoryTotals{}
	}
}

// RoomSummary is the per-room rollup (§4.L step 2).
type RoomSummary struct {
	Room   string
	Totals CategoryTotals
}

// GroupSummary is the per-group rollup (§4.L step 2).
type GroupSummary struct {
	Group  string
	Totals CategoryTotals
}

func addTotals(dst *CategoryTotals, src CategoryTotals) {
	dst.Phone += src.Phone
	dst.Tablet += src.Tablet
	dst.Computer += src.Computer
	dst.Watch += src.Watch
	dst.Wearable += src.Wearable
	dst.Covid += src.Covid
	dst.Beacon += src.Beacon
	dst.Other += src.Other
}

// SummarizeByRoom sums every patch's totals into its owning room
// (§4.L step 2, "summarize_by_room").
func (m *Model) SummarizeByRoom() []RoomSummary {
	byRoom := make(map[string]*RoomSummary)
	var order []string
	for _, p := range m.patches {
		s, ok := byRoom[p.Room]
		if !ok {
			s = &RoomSummary{Room: p.Room}
			byRoom[p.Room] = s
			order = append(order, p.Room)
		}
		addTotals(&s.Totals, p.Totals)
	}
	out := make([]RoomSummary, 0, len(order))
	for _, room := range order {
		out = append(out, *byRoom[room])
	}
	return out
}

// SummarizeByGroup sums every patch's totals into its owning group
// (§4.L step 2, "summarize_by_group").
func (m *Model) SummarizeByGroup() []GroupSummary {
	byGroup := make(map[string]*GroupSummary)
	var order []string
	for _, p := range m.patches {
		s, ok := byGroup[p.Group]
		if !ok {
			s = &GroupSummary{Group: p.Group}
			byGroup[p.Group] = s
			order = append(order, p.Group)
		}
		addTotals(&s.Totals, p.Totals)
	}
	out := make([]GroupSummary, 0, len(order))
	for _, group := range order {
		out = append(out, *byGroup[group])
	}
	return out
}

// Hash computes a simple order-independent summary hash of every
// patch's total occupancy, used to detect a change in the classified
// population between aggregator ticks (§4.L step 3).
func (m *Model) Hash() uint64 {
	var h uint64
	for _, p := range m.patches {
		contribution := fnv64a(fmt.Sprintf("%s:%.3f", p.Name, p.Totals.Sum()))
		h ^= contribution // XOR is order-independent across map iteration
	}
	return h
}

func fnv64a(s string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}

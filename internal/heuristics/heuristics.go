// Package heuristics implements §4.C: pure functions deriving a device's
// name and category from one piece of observed advertisement data at a
// time, applied in the fixed order the specification lists. Each
// heuristic is grounded on the corresponding table in
// internal/ids (OUI/UUID resolution) and on the original source's
// src/bluetooth/heuristic-*.c family, trimmed to the minimal tables the
// specification calls for (§2's "no heuristic string tables beyond a
// minimal set").
package heuristics

import (
	"strings"

	"github.com/houneteam/occusensor/internal/device"
	"github.com/houneteam/occusensor/internal/ids"
)

// Advertisement is the subset of the §6 BLE event source fields the
// heuristics ladder consumes from a single advertisement.
type Advertisement struct {
	Name             string
	Alias            string
	ManufacturerID   uint16
	ManufacturerData []byte
	ServiceUUIDs     []string // 128-bit lower-case canonical form
	Class            uint32
	Appearance       uint16
	Icon             string
	MAC              string
}

// namedDevicePattern is one entry of the minimal known-name table (§4.C.1).
type namedDevicePattern struct {
	match    string
	category device.Category
}

// knownNames is intentionally small: a data asset sample, not the
// source's ~2000-line table (§9 "data asset, not a design element").
var knownNames = []namedDevicePattern{
	{"iphone", device.CategoryPhone},
	{"ipad", device.CategoryTablet},
	{"apple watch", device.CategoryWatch},
	{"galaxy", device.CategoryPhone},
	{"appletv", device.CategoryTV},
	{"apple tv", device.CategoryTV},
	{"macbook", device.CategoryComputer},
	{"airpods", device.CategoryHeadphones},
	{"echo", device.CategorySpeakers},
	{"fitbit", device.CategoryFitness},
	{"printer", device.CategoryPrinter},
}

// privacyMarkers marks possessive names ("Bob's iPhone") that must be
// redacted before storage or mesh transmission (§4.C.1).
var privacyMarkers = []string{"'s ", "’s "}

// RedactPrivateName replaces a possessive device name with a generic
// redacted form, leaving non-possessive names untouched.
func RedactPrivateName(name string) string {
	lower := strings.ToLower(name)
	for _, marker := range privacyMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			rest := name[idx+len(marker):]
			if rest == "" {
				return "Someone's device"
			}
			return "Someone's " + rest
		}
	}
	return name
}

// NameHeuristic (§4.C.1): match the advertised name against the known
// table and suggest a category. Privacy-sensitive names are redacted
// first; redaction never changes name_type ranking.
func NameHeuristic(d *device.Device, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	redacted := RedactPrivateName(name)
	lower := strings.ToLower(redacted)
	for _, p := range knownNames {
		if strings.Contains(lower, p.match) {
			d.SetName(redacted, device.NameDevice)
			d.SetCategoryFromHeuristic(p.category, device.RankName)
			return
		}
	}
	// Unrecognized but real name: still an upgrade over a heuristic/generic
	// guess, just with no category contribution.
	d.SetName(redacted, device.NameDevice)
}

// manufacturerEntry is one row of the minimal manufacturer-id table
// (§4.C.2).
type manufacturerEntry struct {
	name     string
	category device.Category
}

// Manufacturer company IDs, Bluetooth SIG assigned numbers.
const (
	ManufacturerApple   uint16 = 0x004C
	ManufacturerSamsung uint16 = 0x0075
	ManufacturerGoogle  uint16 = 0x00E0
	ManufacturerMicrosoft uint16 = 0x0006
	ManufacturerFitbit  uint16 = 0x0107
)

var manufacturers = map[uint16]manufacturerEntry{
	ManufacturerApple:     {"Apple", device.CategoryUnknown}, // refined by AppleHeuristic
	ManufacturerSamsung:   {"Samsung", device.CategoryUnknown},
	ManufacturerGoogle:    {"Google", device.CategoryUnknown},
	ManufacturerMicrosoft: {"Microsoft", device.CategoryUnknown},
	ManufacturerFitbit:    {"Fitbit", device.CategoryFitness},
}

// ManufacturerHeuristic (§4.C.2).
func ManufacturerHeuristic(d *device.Device, companyID uint16) {
	entry, ok := manufacturers[companyID]
	if !ok {
		return
	}
	d.ManufacturerCode = companyID
	if entry.category != device.CategoryUnknown {
		d.SetCategoryFromHeuristic(entry.category, device.RankManufacturer)
	}
}

// Apple sub-type byte values (§4.C.3), first byte of Apple manufacturer data.
const (
	appleSubTypeBeacon       = 0x02
	appleSubTypeAirpods      = 0x07
	appleSubTypeWatch        = 0x0b
	appleSubTypeNearbyInfo   = 0x10
)

// nearbyInfoPhoneStatus is the set of status nibble values (byte index 3,
// low nibble) that indicate active phone interaction (§4.C.3); these are
// the only ones that promote category to phone.
var nearbyInfoPhoneStatus = map[byte]bool{
	0x07: true,
	0x0e: true,
	0x1b: true,
}

// AppleHeuristic (§4.C.3): interprets Apple manufacturer-data sub-types.
func AppleHeuristic(d *device.Device, companyID uint16, data []byte) {
	if companyID != ManufacturerApple || len(data) == 0 {
		return
	}
	switch data[0] {
	case appleSubTypeBeacon:
		d.SetCategoryFromHeuristic(device.CategoryBeacon, device.RankApple)
		d.IsTrainingBeacon = true
	case appleSubTypeAirpods:
		d.SetCategoryFromHeuristic(device.CategoryHeadphones, device.RankApple)
	case appleSubTypeWatch:
		d.SetCategoryFromHeuristic(device.CategoryWatch, device.RankApple)
	case appleSubTypeNearbyInfo:
		if len(data) < 4 {
			return
		}
		status := data[3] & 0x0f
		if nearbyInfoPhoneStatus[status] {
			d.SetCategoryFromHeuristic(device.CategoryPhone, device.RankApple)
		}
	}
}

// Well-known BLE service UUIDs that drive §4.C.4.
const (
	UUIDIndoorPositioning = "00001821-0000-1000-8000-00805f9b34fb"
	UUIDEddystone         = "0000feaa-0000-1000-8000-00805f9b34fb"
	UUIDTile              = "0000feec-0000-1000-8000-00805f9b34fb"
)

// UUIDHeuristic (§4.C.4): service UUID presence sets category and/or the
// training-beacon flag. The UUID-name lookup table itself lives in
// internal/ids (Bluetooth SIG YAML); this heuristic only interprets the
// small set of UUIDs spec.md calls out by name.
func UUIDHeuristic(d *device.Device, resolver *ids.Resolver, serviceUUIDs []string) {
	for _, u := range serviceUUIDs {
		lu := strings.ToLower(strings.TrimSpace(u))
		switch lu {
		case UUIDIndoorPositioning:
			d.IsTrainingBeacon = true
			d.SetCategoryFromHeuristic(device.CategoryBeacon, device.RankUUID)
		case UUIDEddystone, UUIDTile:
			d.SetCategoryFromHeuristic(device.CategoryBeacon, device.RankUUID)
		}
	}
}

// classCategory maps a 24-bit Bluetooth class-of-device value to a
// category (§4.C.5). Matches a minimal sample of the assigned-numbers
// table (headphones, phone, computer, speakers).
var classCategory = map[uint32]device.Category{
	0x200404: device.CategoryHeadphones,
	0x5a020c: device.CategoryPhone,
	0x080104: device.CategoryComputer,
	0x200418: device.CategorySpeakers,
}

// ClassHeuristic (§4.C.5).
func ClassHeuristic(d *device.Device, class uint32) {
	if class == 0 {
		return
	}
	d.DeviceClass = class
	if cat, ok := classCategory[class]; ok {
		d.SetCategoryFromHeuristic(cat, device.RankClass)
	}
}

// iconCategory maps a BlueZ icon string to category (§4.C.6).
var iconCategory = map[string]device.Category{
	"phone":           device.CategoryPhone,
	"computer":        device.CategoryComputer,
	"audio-headphones": device.CategoryHeadphones,
	"audio-card":      device.CategoryAudioCard,
	"camera-video":    device.CategoryCamera,
	"printer":         device.CategoryPrinter,
}

// appearanceCategory maps BLE GAP Appearance high-level categories
// (top 10 bits) to device category (§4.C.6), a minimal sample.
var appearanceCategory = map[uint16]device.Category{
	0x0040: device.CategoryPhone,   // Generic Phone
	0x00C0: device.CategoryWatch,   // Generic Watch
	0x0080: device.CategoryComputer, // Generic Computer
	0x0941: device.CategoryHeadphones, // Headset / earbuds subtype
}

// IconAppearanceHeuristic (§4.C.6): only fills category if still unknown.
func IconAppearanceHeuristic(d *device.Device, icon string, appearance uint16) {
	if d.Category != device.CategoryUnknown {
		return
	}
	if cat, ok := iconCategory[strings.ToLower(strings.TrimSpace(icon))]; ok {
		d.SetCategoryFromHeuristic(cat, device.RankIconAppearance)
		return
	}
	if appearance != 0 {
		d.Appearance = appearance
		if cat, ok := appearanceCategory[appearance]; ok {
			d.SetCategoryFromHeuristic(cat, device.RankIconAppearance)
		}
	}
}

// OUIHeuristic (§4.C.7): vendor-only, rarely sets a category. A handful of
// vendors that make exclusively one kind of device get a category
// contribution; everything else just resolves a vendor name via
// internal/ids.
func OUIHeuristic(d *device.Device, resolver *ids.Resolver, mac string) (vendor string) {
	if resolver == nil {
		return ""
	}
	vendor = resolver.VendorForMAC(mac)
	if cat := resolver.VendorCategory(mac); cat != device.CategoryUnknown {
		d.SetCategoryFromHeuristic(cat, device.RankOUI)
	}
	return vendor
}

// Apply runs the full §4.C ladder, in the fixed order the spec lists, over
// one advertisement.
func Apply(d *device.Device, resolver *ids.Resolver, adv Advertisement) {
	NameHeuristic(d, adv.Name)
	ManufacturerHeuristic(d, adv.ManufacturerID)
	AppleHeuristic(d, adv.ManufacturerID, adv.ManufacturerData)
	UUIDHeuristic(d, resolver, adv.ServiceUUIDs)
	ClassHeuristic(d, adv.Class)
	IconAppearanceHeuristic(d, adv.Icon, adv.Appearance)
	OUIHeuristic(d, resolver, adv.MAC)
}

// BeaconAlias is one configured remap entry for the §3 "Beacon alias"
// table: (canonical_name, mac_64, alias), loaded from the configuration
// file's `beacons` array.
type BeaconAlias struct {
	Name  string
	MAC64 uint64
	Alias string
}

// ApplyBeaconAlias remaps a device's name to its configured display alias
// when its advertised name or MAC matches a known beacon, grounded on
// original_source/src/report.c's apply_known_beacons: an exact match on
// either field (not a prefix match) sets the name at nt_alias, the
// highest-ranked name type, so it always wins the name ladder regardless
// of heuristic application order.
func ApplyBeaconAlias(d *device.Device, aliases []BeaconAlias, advertisedName string) {
	for _, b := range aliases {
		if b.Name == advertisedName || (b.MAC64 != 0 && b.MAC64 == d.MAC64) {
			d.SetName(b.Alias, device.NameAlias)
			return
		}
	}
}

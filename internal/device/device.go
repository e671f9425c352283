// Package device implements the bounded, insertion-ordered table of
// currently-tracked local BLE devices (§3, §4.B of the specification):
// identity, lifecycle, and Kalman-filtered signal state.
package device

import (
	"strings"
	"time"

	"github.com/houneteam/occusensor/internal/kalman"
)

// AddressType mirrors the BLE address type carried in advertisements.
type AddressType int8

const (
	AddressUnknown AddressType = iota
	AddressPublic
	AddressRandom
)

// NameType ranks the provenance of a device's Name. Larger always wins
// (§3 invariant: name_type only increases).
type NameType int

const (
	NameInitial NameType = 0
	NameGeneric NameType = 100
	NameManufacturer NameType = 200
	NameDevice   NameType = 300
	NameKnown    NameType = 400
	NameAlias    NameType = 500
)

// Category is the coarse device classification produced by the heuristics
// package (§4.C) and refined over the device's lifetime per the upgrade
// ladder in §4.B.
type Category int8

const (
	CategoryUnknown Category = iota
	CategoryPhone
	CategoryWearable
	CategoryTablet
	CategoryHeadphones
	CategoryComputer
	CategoryTV
	CategoryFixed
	CategoryBeacon
	CategoryCar
	CategoryAudioCard
	CategoryLighting
	CategorySprinklers
	CategoryPOS
	CategoryAppliance
	CategorySecurity
	CategoryFitness
	CategoryPrinter
	CategorySpeakers
	CategoryCamera
	CategoryWatch
	CategoryCovid
)

func (c Category) String() string {
	switch c {
	case CategoryPhone:
		return "phone"
	case CategoryWearable:
		return "wearable"
	case CategoryTablet:
		return "tablet"
	case CategoryHeadphones:
		return "headphones"
	case CategoryComputer:
		return "computer"
	case CategoryTV:
		return "tv"
	case CategoryFixed:
		return "fixed"
	case CategoryBeacon:
		return "beacon"
	case CategoryCar:
		return "car"
	case CategoryAudioCard:
		return "audio-card"
	case CategoryLighting:
		return "lighting"
	case CategorySprinklers:
		return "sprinklers"
	case CategoryPOS:
		return "pos"
	case CategoryAppliance:
		return "appliance"
	case CategorySecurity:
		return "security"
	case CategoryFitness:
		return "fitness"
	case CategoryPrinter:
		return "printer"
	case CategorySpeakers:
		return "speakers"
	case CategoryCamera:
		return "camera"
	case CategoryWatch:
		return "watch"
	case CategoryCovid:
		return "covid"
	default:
		return "unknown"
	}
}

// ParseCategory is the inverse of String, used when decoding mesh messages.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phone":
		return CategoryPhone
	case "wearable":
		return CategoryWearable
	case "tablet":
		return CategoryTablet
	case "headphones":
		return CategoryHeadphones
	case "computer":
		return CategoryComputer
	case "tv":
		return CategoryTV
	case "fixed":
		return CategoryFixed
	case "beacon":
		return CategoryBeacon
	case "car":
		return CategoryCar
	case "audio-card":
		return CategoryAudioCard
	case "lighting":
		return CategoryLighting
	case "sprinklers":
		return CategorySprinklers
	case "pos":
		return CategoryPOS
	case "appliance":
		return CategoryAppliance
	case "security":
		return CategorySecurity
	case "fitness":
		return CategoryFitness
	case "printer":
		return CategoryPrinter
	case "speakers":
		return CategorySpeakers
	case "camera":
		return CategoryCamera
	case "watch":
		return CategoryWatch
	case "covid":
		return CategoryCovid
	default:
		return CategoryUnknown
	}
}

// TryConnectState is the connection-trial state machine named in §3.
// It never implements an actual GATT connect (out of scope per §1) but is
// exercised by merge_remote so the field has real monotonic semantics.
type TryConnectState int8

const (
	TryConnectZero TryConnectState = iota
	TryConnectInProgress
	TryConnectComplete = 15 // mirrors original_source TRY_CONNECT_COMPLETE
)

// Device is the local BLE device record described in §3.
type Device struct {
	// Identity
	MAC     string // "aa:bb:cc:dd:ee:ff", lower-case canonical form
	MAC64   uint64
	AddressType AddressType

	// Naming
	Name     string
	NameType NameType
	Alias    string

	// Category
	Category     Category
	categoryRank HeuristicRank

	// Signal
	RawRSSI          int
	FilteredRSSI     *kalman.Filter
	FilteredDistance *kalman.Filter
	Distance         float64
	TxPower          int
	DeviceClass      uint32
	Appearance       uint16
	ManufacturerCode uint16
	ManufacturerHash int
	ServiceDataHash  int
	UUIDHash         int
	UUIDsLength      int

	// Temporal
	Earliest   time.Time
	LatestLocal time.Time
	LatestAny   time.Time
	LastSent   time.Time
	Count      int

	// Flags
	Paired           bool
	Connected        bool
	Trusted          bool
	IsTrainingBeacon bool
	SupersededBy     uint64 // MAC64 of the younger successor device, 0 if none

	// Connection trial
	TryConnectState    TryConnectState
	TryConnectAttempts int

	// Lifecycle bookkeeping (§4.B eviction two-stage process).
	Hidden bool
	TTL    uint8
}

// NewDevice creates a device freshly observed at `now`, with unset filters.
func NewDevice(mac string, mac64 uint64, now time.Time) *Device {
	return &Device{
		MAC:              strings.ToLower(mac),
		MAC64:            mac64,
		FilteredRSSI:     kalman.New(),
		FilteredDistance: kalman.New(),
		Earliest:         now,
		LatestLocal:      now,
		LatestAny:        now,
		Count:            1,
	}
}

// CheckInvariants validates the temporal and monotonicity invariants of §8.
// Intended for use in tests, not the hot path.
func (d *Device) CheckInvariants() error {
	if d.Earliest.After(d.LatestLocal) {
		return errInvariant("earliest after latest_local")
	}
	if d.LatestLocal.After(d.LatestAny) {
		return errInvariant("latest_local after latest_any")
	}
	if d.Count < 1 {
		return errInvariant("count < 1 on an observed device")
	}
	return nil
}

type invariantError string

func (e invariantError) Error() string { return string(e) }

func errInvariant(msg string) error { return invariantError(msg) }

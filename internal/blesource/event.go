// Package blesource adapts the platform Bluetooth stack into the typed
// event feed the rest of this module consumes (§6 "BLE event source
// (inbound)"). Everything downstream — heuristics, rssi, device — only
// ever sees an Event; it never imports tinygo.org/x/bluetooth or
// godbus/dbus directly.
package blesource

// Kind distinguishes a full property snapshot from a partial update
// (§6 "device appeared" vs "property changed").
type Kind int

const (
	// Appeared carries a full property set: every field is populated
	// from the stack's current view of the device.
	Appeared Kind = iota
	// Changed carries only the properties that changed; the caller must
	// preserve previously-known values for everything else (§6 "missing
	// fields preserve previous value").
	Changed
)

// ManufacturerEntry is one manufacturer-data advertisement field entry,
// keyed by the Bluetooth SIG company id.
type ManufacturerEntry struct {
	CompanyID uint16
	Data      []byte
}

// ServiceDataEntry is one service-data advertisement field entry.
type ServiceDataEntry struct {
	UUID string
	Data []byte
}

// Event is one BLE observation, in the shape §6 specifies: mac,
// address type, name/alias, signal fields, classic-Bluetooth flags,
// and the raw advertisement structures the heuristics ladder inspects.
type Event struct {
	Kind Kind

	MAC         string
	AddressType AddressType

	Name  *string
	Alias *string

	TxPower *int16
	RSSI    *int16

	Paired    *bool
	Connected *bool
	Trusted   *bool

	Class      *uint32
	Appearance *uint16
	Icon       *string

	UUIDs            []string
	ManufacturerData []ManufacturerEntry
	ServiceData      []ServiceDataEntry
}

// AddressType mirrors the BLE address type carried on the wire; kept
// distinct from internal/device.AddressType so this package has no
// dependency on the device model (callers translate at the boundary).
type AddressType int8

const (
	AddressTypeUnknown AddressType = iota
	AddressTypePublic
	AddressTypeRandom
)

// Handler processes one Event as it arrives from the scan loop.
type Handler func(Event)

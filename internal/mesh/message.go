// Package mesh implements the UDP broadcast gossip transport (§4.F) and
// its JSON wire schema (§6). Grounded on
// original_source/src/core/udp.c (socket handling, NUL-terminated
// framing) and src/core/serialization.c (field names and presence-driven
// shape).
package mesh

import (
	"encoding/json"
)

// MaxDatagramSize is the largest payload the wire format permits (§6).
const MaxDatagramSize = 2048

// DefaultPort is the well-known mesh broadcast port (§4.F, §6).
const DefaultPort = 7779

// Message is the superset schema shared by access-point and device
// messages (§4.F): presence/absence of MAC distinguishes the two
// shapes. All fields besides From are optional, so every field below is
// a pointer or has `omitempty`, matching the wire format's
// presence-driven semantics (§6).
type Message struct {
	From        string  `json:"from"`
	Short       string  `json:"short,omitempty"`
	Description string  `json:"description,omitempty"`
	Platform    string  `json:"platform,omitempty"`

	RSSIOneMeter   *int     `json:"rssi_one_meter,omitempty"`
	RSSIFactor     *float64 `json:"rssi_factor,omitempty"`
	PeopleDistance *float64 `json:"people_distance,omitempty"`
	APClass        *int     `json:"ap_class,omitempty"`

	Seq int64 `json:"seq"`

	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
	CO2         *float64 `json:"co2,omitempty"`
	VOC         *float64 `json:"voc,omitempty"`
	Brightness  *float64 `json:"brightness,omitempty"`
	WiFi        *int     `json:"wifi,omitempty"`

	// Device fields: MAC's presence is what makes this a device message.
	MAC              string   `json:"mac,omitempty"`
	Name             string   `json:"name,omitempty"`
	Alias            string   `json:"alias,omitempty"`
	AddressType      *int     `json:"addressType,omitempty"`
	Category         string   `json:"category,omitempty"`
	Distance         *float64 `json:"distance,omitempty"`
	FilteredRSSI     *float64 `json:"filtered_rssi,omitempty"`
	RawRSSI          *int     `json:"raw_rssi,omitempty"`
	Count            *int     `json:"count,omitempty"`
	Earliest         *int64   `json:"earliest,omitempty"`
	Latest           *int64   `json:"latest,omitempty"`
	TryConnectState  *int     `json:"try_connect_state,omitempty"`
	KnownInterval    *int     `json:"known_interval,omitempty"`
	NameType         *int     `json:"nt,omitempty"`
	Training         *int     `json:"training,omitempty"`
}

// IsDeviceMessage reports whether m carries a device update, as opposed
// to being a bare access-point snapshot (§4.F).
func (m Message) IsDeviceMessage() bool { return m.MAC != "" }

// Encode serializes m as the NUL-terminated wire frame (§4.F, §6).
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(body, 0), nil
}

// Decode parses a received datagram, tolerating a trailing NUL or any
// trailing NUL padding the sender added.
func Decode(payload []byte) (Message, error) {
	payload = trimTrailingNUL(payload)
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}

func trimTrailingNUL(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}

// IntPtr, Float64Ptr are small constructors for the message's optional
// fields, used by callers building outbound messages without repeating
// `x := v; &x` at every call site.
func IntPtr(v int) *int             { return &v }
func Float64Ptr(v float64) *float64 { return &v }
func Int64Ptr(v int64) *int64       { return &v }

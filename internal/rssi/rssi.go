// Package rssi converts a raw received-signal-strength reading into a
// smoothed distance estimate and decides when that estimate is worth
// reporting (§4.D of the specification).
package rssi

import (
	"math"
	"strings"

	"github.com/houneteam/occusensor/internal/device"
)

// Calibration holds the two path-loss constants a deployment tunes for
// its own radio environment (§4.D, named "rssi_one_meter" / "rssi_factor"
// in the original source).
type Calibration struct {
	RSSIOneMeter float64 // expected RSSI at 1m, typically around -64
	RSSIFactor   float64 // path-loss exponent scaling factor, typically around 3.5
}

// DefaultCalibration mirrors the source's built-in defaults.
var DefaultCalibration = Calibration{RSSIOneMeter: -64.0, RSSIFactor: 3.5}

// rangeFactorRule is one entry of the name/category-based range factor
// table (§4.D supplemented feature: RangeFactor(category, name)).
type rangeFactorRule struct {
	namePrefix string
	category   device.Category
	factor     float64
}

// rangeFactors reproduces the handful of empirical corrections the
// original deployment hard-coded for devices known to transmit unusually
// strong or weak signals relative to the generic path-loss model.
var rangeFactors = []rangeFactorRule{
	{namePrefix: "ipad", factor: 1.2},
	{namePrefix: "apple tv", factor: 1.2},
	{namePrefix: "[tv] samsung", factor: 2.0},
}

// RangeFactor returns the per-device correction multiplier for the
// distance formula, checked in order: exact/prefix name match first,
// then a blanket correction for fixed-infrastructure devices, default
// 1.0 otherwise.
func RangeFactor(category device.Category, name string) float64 {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, r := range rangeFactors {
		if lower != "" && strings.HasPrefix(lower, r.namePrefix) {
			return r.factor
		}
	}
	if category == device.CategoryFixed {
		return 1.5
	}
	return 1.0
}

// DistanceRaw converts a single RSSI sample into an unsmoothed distance
// estimate in meters using the log-distance path-loss model (§4.D).
func DistanceRaw(cal Calibration, rssiDBm int, factor float64) float64 {
	exponent := (cal.RSSIOneMeter - float64(rssiDBm)) / (10.0 * cal.RSSIFactor)
	return math.Pow(10.0, exponent) * factor
}

// sendScoreThreshold and sendIntervalCeiling gate how often a smoothed
// distance update is worth reporting upstream (§4.D "emit decision"):
// a 1m change held for 10s, or a 10m change in 1s, both score exactly
// at the threshold; anything beyond it is sent immediately, and a
// sample is always sent once sendIntervalCeiling has elapsed regardless
// of how little distance has moved.
const (
	sendScoreThreshold  = 10.0
	sendIntervalCeiling = 30.0 // seconds
)

// Update applies one RSSI observation to a device: recomputes distance,
// runs it through the device's Kalman filter, and reports whether the
// new smoothed value is worth sending (§4.D).
//
// secondsSinceLastSend is the caller-supplied elapsed time since the
// device's LastSent was last updated; the caller owns that bookkeeping
// since it also drives mesh gossip cadence independently of this
// package.
func Update(d *device.Device, cal Calibration, rssiDBm int, secondsSinceLastSend float64) (smoothed float64, shouldSend bool) {
	d.RawRSSI = rssiDBm
	d.FilteredRSSI.Update(float64(rssiDBm))

	factor := RangeFactor(d.Category, d.Name)
	raw := DistanceRaw(cal, rssiDBm, factor)
	smoothed = d.FilteredDistance.Update(raw)

	deltaV := math.Abs(d.Distance - smoothed)
	score := deltaV * secondsSinceLastSend

	shouldSend = score > sendScoreThreshold || secondsSinceLastSend > sendIntervalCeiling
	if shouldSend {
		d.Distance = smoothed
	}
	return smoothed, shouldSend
}

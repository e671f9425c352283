package rssi

import (
	"math"
	"testing"
	"time"

	"github.com/houneteam/occusensor/internal/device"
)

func TestRangeFactorNamePrefixBeatsDefault(t *testing.T) {
	if f := RangeFactor(device.CategoryUnknown, "iPad Pro"); f != 1.2 {
		t.Fatalf("RangeFactor(ipad) = %v, want 1.2", f)
	}
	if f := RangeFactor(device.CategoryUnknown, "[TV] Samsung Living Room"); f != 2.0 {
		t.Fatalf("RangeFactor(samsung tv) = %v, want 2.0", f)
	}
	if f := RangeFactor(device.CategoryUnknown, "random device"); f != 1.0 {
		t.Fatalf("RangeFactor(default) = %v, want 1.0", f)
	}
}

func TestRangeFactorFixedCategoryFallback(t *testing.T) {
	if f := RangeFactor(device.CategoryFixed, "Unnamed Beacon"); f != 1.5 {
		t.Fatalf("RangeFactor(fixed) = %v, want 1.5", f)
	}
}

func TestDistanceRawAtCalibrationPointIsOneMeter(t *testing.T) {
	d := DistanceRaw(DefaultCalibration, int(DefaultCalibration.RSSIOneMeter), 1.0)
	if math.Abs(d-1.0) > 1e-9 {
		t.Fatalf("distance at calibration rssi = %v, want 1.0", d)
	}
}

func TestDistanceRawWeakerSignalIsFarther(t *testing.T) {
	near := DistanceRaw(DefaultCalibration, -50, 1.0)
	far := DistanceRaw(DefaultCalibration, -90, 1.0)
	if far <= near {
		t.Fatalf("weaker rssi should yield greater distance: near=%v far=%v", near, far)
	}
}

func TestUpdateSendsOnFirstSample(t *testing.T) {
	d := device.NewDevice("aa:bb:cc:dd:ee:01", 1, time.Now())
	_, send := Update(d, DefaultCalibration, -70, 31) // past the interval ceiling
	if !send {
		t.Fatal("expected send once interval ceiling exceeded")
	}
}

func TestUpdateSuppressesTinyChangeWithinInterval(t *testing.T) {
	d := device.NewDevice("aa:bb:cc:dd:ee:01", 1, time.Now())
	Update(d, DefaultCalibration, -65, 31) // establish a baseline distance near 1m
	_, send := Update(d, DefaultCalibration, -65, 1)
	if send {
		t.Fatal("identical rssi within interval should not trigger a send")
	}
}

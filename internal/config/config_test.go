package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnvOverlaysDefaults(t *testing.T) {
	t.Setenv("HOST_NAME", "sensor-01")
	t.Setenv("RSSI_ONE_METER", "-59")
	t.Setenv("PEOPLE_DISTANCE", "12.5")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HostName != "sensor-01" {
		t.Fatalf("HostName = %q, want sensor-01", cfg.HostName)
	}
	if cfg.RSSIOneMeter != -59 {
		t.Fatalf("RSSIOneMeter = %d, want -59", cfg.RSSIOneMeter)
	}
	if cfg.PeopleDistance != 12.5 {
		t.Fatalf("PeopleDistance = %v, want 12.5", cfg.PeopleDistance)
	}
	if cfg.UDPMeshPort != 7779 {
		t.Fatalf("unset UDPMeshPort should keep default, got %d", cfg.UDPMeshPort)
	}
}

func TestFromEnvReportsMalformedValue(t *testing.T) {
	t.Setenv("RSSI_FACTOR", "not-a-number")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for malformed RSSI_FACTOR")
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("missing config file should be tolerated, got %v", err)
	}
	if len(fc.Sensors) != 0 || len(fc.Beacons) != 0 {
		t.Fatalf("expected empty config, got %+v", fc)
	}
}

func TestLoadFileParsesSensorsAndBeacons(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"sensors":[{"name":"kitchen-sensor"}],"beacons":[{"name":"badge","mac":"aa:bb:cc:dd:ee:ff","alias":"Badge One"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(fc.Sensors) != 1 || fc.Sensors[0].Name != "kitchen-sensor" {
		t.Fatalf("unexpected sensors: %+v", fc.Sensors)
	}
	if len(fc.Beacons) != 1 || fc.Beacons[0].MAC != "aa:bb:cc:dd:ee:ff" {
		t.Fatalf("unexpected beacons: %+v", fc.Beacons)
	}
}

package ids

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/houneteam/occusensor/internal/device"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadOUI(t *testing.T) {
	dir := t.TempDir()
	csv := "Registry,Assignment,Organization Name\nMA-L,AABBCC,Acme Radios\nMA-L,00:1A:2B,Beta Corp\n"
	path := filepath.Join(dir, "oui.csv")
	writeFile(t, path, csv)

	vendors, err := LoadOUI(path)
	if err != nil {
		t.Fatalf("LoadOUI: %v", err)
	}
	if vendors["AABBCC"] != "Acme Radios" {
		t.Fatalf("vendors[AABBCC] = %q, want Acme Radios", vendors["AABBCC"])
	}
	if vendors["001A2B"] != "Beta Corp" {
		t.Fatalf("vendors[001A2B] = %q, want Beta Corp (dashes/colons normalized)", vendors["001A2B"])
	}
}

func TestLoadUUIDYaml(t *testing.T) {
	dir := t.TempDir()
	yaml := "uuids:\n  - uuid: 0x1800\n    name: Generic Access\n  - uuid: \"0000feaa-0000-1000-8000-00805f9b34fb\"\n    name: Eddystone\n"
	path := filepath.Join(dir, "service_uuids.yaml")
	writeFile(t, path, yaml)

	names, err := LoadUUIDYaml(path)
	if err != nil {
		t.Fatalf("LoadUUIDYaml: %v", err)
	}
	if names["00001800-0000-1000-8000-00805f9b34fb"] != "Generic Access" {
		t.Fatalf("missing generic access entry, got %v", names)
	}
	if names[UUIDEddystone] != "Eddystone" {
		t.Fatalf("missing eddystone entry, got %v", names)
	}
}

func TestLoadMergesDefaultAndCustomDirs(t *testing.T) {
	dataDir := t.TempDir()
	defaultDir := filepath.Join(dataDir, "default")
	customDir := filepath.Join(dataDir, "custom")
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(customDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(defaultDir, "oui.csv"), "Registry,Assignment,Organization Name\nMA-L,AABBCC,Default Vendor\n")
	writeFile(t, filepath.Join(customDir, "oui.csv"), "Registry,Assignment,Organization Name\nMA-L,AABBCC,Overridden Vendor\n")

	resolver, err := Load(LoadConfig{DataDir: dataDir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolver.VendorForMAC("AA:BB:CC:00:00:01") != "Overridden Vendor" {
		t.Fatalf("vendor = %q, want custom entry to overlay default", resolver.VendorForMAC("AA:BB:CC:00:00:01"))
	}
}

func TestLoadReturnsNilResolverWhenNothingFound(t *testing.T) {
	resolver, err := Load(LoadConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolver != nil {
		t.Fatal("expected a nil resolver when no data files are present")
	}
}

func newTestResolver() *Resolver {
	return &Resolver{
		vendors: map[string]string{
			"AABBCC": "Fitbit Inc",
		},
		serviceUUIDNames: map[string]string{
			UUIDEddystone: "Eddystone",
		},
		charUUIDNames: map[string]string{},
	}
}

func TestResolverVendorForMAC(t *testing.T) {
	r := newTestResolver()
	if got := r.VendorForMAC("aa:bb:cc:dd:ee:ff"); got != "Fitbit Inc" {
		t.Fatalf("vendor = %q, want Fitbit Inc", got)
	}
	if got := r.VendorForMAC("11:22:33:44:55:66"); got != "" {
		t.Fatalf("vendor = %q, want empty for unknown OUI", got)
	}
}

func TestResolverVendorForMACNilSafe(t *testing.T) {
	var r *Resolver
	if got := r.VendorForMAC("aa:bb:cc:dd:ee:ff"); got != "" {
		t.Fatalf("vendor = %q, want empty on nil resolver", got)
	}
}

func TestResolverAnnotateServiceUUID(t *testing.T) {
	r := newTestResolver()
	got := r.AnnotateServiceUUID(UUIDEddystone)
	want := UUIDEddystone + " (Eddystone)"
	if got != want {
		t.Fatalf("annotated = %q, want %q", got, want)
	}
	if got := r.AnnotateServiceUUID(UUIDTile); got != UUIDTile {
		t.Fatalf("unresolved uuid should pass through unchanged, got %q", got)
	}
}

func TestResolverVendorCategoryMatchesSinglePurposeVendor(t *testing.T) {
	r := newTestResolver()
	if got := r.VendorCategory("aa:bb:cc:dd:ee:ff"); got != device.CategoryFitness {
		t.Fatalf("category = %v, want fitness for Fitbit vendor", got)
	}
}

func TestResolverVendorCategoryUnknownForGeneralVendor(t *testing.T) {
	r := &Resolver{vendors: map[string]string{"AABBCC": "Generic Radios LLC"}}
	if got := r.VendorCategory("aa:bb:cc:dd:ee:ff"); got != device.CategoryUnknown {
		t.Fatalf("category = %v, want unknown for a vendor with no single-purpose mapping", got)
	}
}

func TestMacToOUINormalizesSeparators(t *testing.T) {
	cases := map[string]string{
		"aa:bb:cc:dd:ee:ff": "AABBCC",
		"AA-BB-CC-DD-EE-FF": "AABBCC",
		"":                  "",
		"not-a-mac":         "",
	}
	for in, want := range cases {
		if got := macToOUI(in); got != want {
			t.Errorf("macToOUI(%q) = %q, want %q", in, got, want)
		}
	}
}

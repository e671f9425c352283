package blesource

import (
	"context"
	"strings"
	"sync"
	"time"

	tg "tinygo.org/x/bluetooth"

	"github.com/houneteam/occusensor/internal/console"
)

// ScanWindow is how long each LE scan burst runs before the loop checks
// for cancellation and restarts it (grounded on the teacher's
// scanner.go "3*time.Second" scan burst).
const ScanWindow = 3 * time.Second

// Source drives one BLE adapter's continuous LE scan, translating every
// tinygo.org/x/bluetooth scan result into an Event (§6).
type Source struct {
	AdapterID string
	BlueZ     *BlueZSupplement // optional; nil disables classic-property supplementing

	adapter *tg.Adapter
}

// Open enables the underlying adapter.
func (s *Source) Open() error {
	s.adapter = tg.NewAdapter(s.AdapterID)
	return s.adapter.Enable()
}

// Run scans in a loop until ctx is cancelled, invoking handle for every
// device observed (grounded on the teacher's
// StartContinuousScanAndConnect main loop, trimmed to the scan-and-
// classify concern — connection/GATT dumping is out of this module's
// scope, §1 Non-goals "not a device-identification system").
func (s *Source) Run(ctx context.Context, handle Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		console.Linef("[SCAN]", console.ColorGray, "adapter=%s duration=%s", s.AdapterID, ScanWindow)
		events, err := s.scanOnce(ctx)
		if err != nil {
			console.Linef("[ERROR]", console.ColorRed, "scan failed on %s: %v", s.AdapterID, err)
			time.Sleep(ScanWindow)
			continue
		}
		for _, ev := range events {
			if s.BlueZ != nil {
				s.BlueZ.Supplement(ctx, &ev)
			}
			handle(ev)
		}
	}
}

func (s *Source) scanOnce(ctx context.Context) ([]Event, error) {
	var mu sync.Mutex
	results := make(map[string]Event)

	_ = s.adapter.StopScan()
	time.Sleep(150 * time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.adapter.Scan(func(_ *tg.Adapter, res tg.ScanResult) {
			ev := toEvent(res)
			mu.Lock()
			results[ev.MAC] = ev
			mu.Unlock()
		})
	}()

	select {
	case <-time.After(ScanWindow):
		_ = s.adapter.StopScan()
	case <-ctx.Done():
		_ = s.adapter.StopScan()
		return nil, ctx.Err()
	}

	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-time.After(time.Second):
	}

	out := make([]Event, 0, len(results))
	for _, ev := range results {
		out = append(out, ev)
	}
	return out, nil
}

func toEvent(res tg.ScanResult) Event {
	mac := strings.ToUpper(res.Address.String())
	name := strings.TrimSpace(res.LocalName())
	rssi := int16(res.RSSI)

	addrType := AddressTypePublic
	if res.Address.IsRandom() {
		addrType = AddressTypeRandom
	}

	var uuids []string
	for _, u := range res.ServiceUUIDs() {
		uuids = append(uuids, u.String())
	}

	var mfg []ManufacturerEntry
	for _, m := range res.ManufacturerData() {
		mfg = append(mfg, ManufacturerEntry{CompanyID: m.CompanyID, Data: append([]byte(nil), m.Data...)})
	}

	var svc []ServiceDataEntry
	for _, sd := range res.ServiceData() {
		svc = append(svc, ServiceDataEntry{UUID: sd.UUID.String(), Data: append([]byte(nil), sd.Data...)})
	}

	ev := Event{
		Kind:             Appeared,
		MAC:              mac,
		AddressType:      addrType,
		RSSI:             &rssi,
		UUIDs:            uuids,
		ManufacturerData: mfg,
		ServiceData:      svc,
	}
	if name != "" {
		ev.Name = &name
	}
	return ev
}

// Command occusensor is one mesh sensor node: it scans BLE
// advertisements on a local adapter, gossips what it sees to its peer
// sensors over UDP, and periodically reports a building-wide occupancy
// snapshot to MQTT, InfluxDB, a webhook, a local UDP sign display, and
// a DBus status method (§4-§6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/houneteam/occusensor/internal/accesspoint"
	"github.com/houneteam/occusensor/internal/aggregator"
	"github.com/houneteam/occusensor/internal/blesource"
	"github.com/houneteam/occusensor/internal/closest"
	"github.com/houneteam/occusensor/internal/config"
	"github.com/houneteam/occusensor/internal/console"
	"github.com/houneteam/occusensor/internal/device"
	"github.com/houneteam/occusensor/internal/diagstore"
	"github.com/houneteam/occusensor/internal/egress"
	"github.com/houneteam/occusensor/internal/egress/dbusstatus"
	"github.com/houneteam/occusensor/internal/egress/influxsink"
	"github.com/houneteam/occusensor/internal/egress/mqttsink"
	"github.com/houneteam/occusensor/internal/egress/udpsink"
	"github.com/houneteam/occusensor/internal/egress/webhooksink"
	"github.com/houneteam/occusensor/internal/heuristics"
	"github.com/houneteam/occusensor/internal/ids"
	"github.com/houneteam/occusensor/internal/knn"
	"github.com/houneteam/occusensor/internal/mesh"
	"github.com/houneteam/occusensor/internal/occupancy"
	"github.com/houneteam/occusensor/internal/overlap"
	"github.com/houneteam/occusensor/internal/patchmodel"
	"github.com/houneteam/occusensor/internal/rssi"
	"github.com/houneteam/occusensor/internal/sensorctx"
	"github.com/houneteam/occusensor/internal/snapshot"
	"github.com/houneteam/occusensor/internal/state"
)

const (
	scanReportInterval = 20 * time.Second
	evictionInterval   = 5 * time.Second
	apStatsInterval    = 5 * time.Minute
	selfBroadcastEvery = 5 * time.Second
)

func main() {
	var (
		adapterFlag      = flag.String("adapter", "hci0", "Bluetooth adapter to scan on")
		dataDirFlag      = flag.String("data-dir", "./data", "Directory for OUI/UUID data tables (default/ and custom/ subfolders)")
		recordingsFlag   = flag.String("recordings-dir", "./data/recordings", "Directory of patch training recordings (§4.I-J)")
		diagDBFlag       = flag.String("diag-db", "diagnostics.db", "Path to the sqlite diagnostics store")
		useBlueZFlag     = flag.Bool("bluez-supplement", true, "Supplement scan results with classic BlueZ properties over D-Bus")
		useDBusStatsFlag = flag.Bool("dbus-status", true, "Export the DBus Status() method")
	)
	flag.Parse()

	logFile, err := os.OpenFile("occusensor.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	printBanner()

	ctx, cancel := sensorctx.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		console.Linef("[CONFIG]", console.ColorYellow, "malformed environment value(s), using defaults where invalid: %v", err)
	}
	if cfg.HostName == "" {
		if hn, herr := os.Hostname(); herr == nil {
			cfg.HostName = hn
		} else {
			cfg.HostName = "sensor-1"
		}
	}

	fileCfg, err := config.LoadFile(cfg.ConfigPath)
	if err != nil {
		console.Linef("[CONFIG]", console.ColorYellow, "failed to parse %s, running with empty config: %v", cfg.ConfigPath, err)
	}

	resolver, err := ids.Load(ids.LoadConfig{DataDir: *dataDirFlag})
	if err != nil {
		console.Linef("[IDS]", console.ColorYellow, "failed to load OUI/UUID tables, heuristics degraded: %v", err)
		resolver = &ids.Resolver{}
	}

	store, err := diagstore.Open(*diagDBFlag)
	if err != nil {
		console.Linef("[ERROR]", console.ColorRed, "failed to open diagnostics store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	session, err := store.CreateSession(ctx, cfg.HostName)
	if err != nil {
		console.Linef("[ERROR]", console.ColorRed, "failed to create diagnostics session: %v", err)
		os.Exit(1)
	}
	console.Linef("[SESSION]", console.ColorGray, "host=%s uuid=%s", cfg.HostName, session.UUID)

	model := patchmodel.NewModel()
	recordingStore := patchmodel.NewStore(model)
	apIndexForRecordings := map[string]int{cfg.HostName: 0}
	if err := recordingStore.LoadDir(*recordingsFlag, true, apIndexForRecordings); err != nil {
		console.Linef("[PATCH]", console.ColorYellow, "failed to load recordings from %s: %v", *recordingsFlag, err)
	}
	if len(model.All()) == 0 {
		for _, p := range patchmodel.NewDefault().All() {
			model.GetOrCreate(p.Name, p.Room, p.Group, p.Tags, p.Confirmed)
		}
	}

	st := state.New(state.DefaultConfig)
	self, _ := st.AccessPoints.GetOrCreate(cfg.HostName)
	self.Short = cfg.HostName
	self.Description = cfg.HostDescription
	self.Platform = cfg.HostPlatform
	self.RSSIOneMeter = cfg.RSSIOneMeter
	self.RSSIFactor = cfg.RSSIFactor
	self.PeopleDistance = cfg.PeopleDistance
	st.Self = self

	// Pre-register configured sensors so they appear in diagnostics and
	// reports even before their first mesh broadcast arrives, and alias a
	// lower-cased variant of each hostname to its configured canonical
	// form in case a restart changes the reported case (§6 "sensors:
	// [{name}]", grounded on the original source's commented-out
	// add_access_point pre-registration in rooms.c).
	for _, s := range fileCfg.Sensors {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		if lower := strings.ToLower(name); lower != name {
			st.AccessPoints.SetAlias(lower, name)
		}
		st.AccessPoints.GetOrCreate(name)
	}

	beacons := make([]snapshot.BeaconConfig, 0, len(fileCfg.Beacons))
	beaconAliases := make([]heuristics.BeaconAlias, 0, len(fileCfg.Beacons))
	for _, b := range fileCfg.Beacons {
		beacons = append(beacons, snapshot.BeaconConfig{Name: b.Name, MAC: strings.ToLower(b.MAC), Alias: b.Alias})
		beaconAliases = append(beaconAliases, heuristics.BeaconAlias{
			Name:  b.Name,
			MAC64: macToUint64(strings.ToLower(b.MAC)),
			Alias: b.Alias,
		})
	}

	meshTransport, err := mesh.Listen(cfg.UDPMeshPort)
	if err != nil {
		console.Linef("[ERROR]", console.ColorRed, "failed to open mesh socket: %v", err)
		os.Exit(1)
	}
	defer meshTransport.Close()

	go meshTransport.Receive(ctx, cfg.HostName, meshMessageHandler(st))

	var blueZ *blesource.BlueZSupplement
	if *useBlueZFlag {
		blueZ, err = blesource.OpenBlueZSupplement(*adapterFlag)
		if err != nil {
			console.Linef("[BLUEZ]", console.ColorYellow, "classic-property supplement unavailable: %v", err)
			blueZ = nil
		}
	}

	source := &blesource.Source{AdapterID: *adapterFlag, BlueZ: blueZ}
	if err := source.Open(); err != nil {
		console.Linef("[ERROR]", console.ColorRed, "failed to open adapter %s: %v", *adapterFlag, err)
		os.Exit(1)
	}

	cal := rssi.Calibration{RSSIOneMeter: float64(cfg.RSSIOneMeter), RSSIFactor: cfg.RSSIFactor}
	go func() {
		handler := bleEventHandler(st, resolver, cal, store, session, model, recordingStore, beaconAliases)
		if err := source.Run(ctx, handler); err != nil && ctx.Err() == nil {
			console.Linef("[ERROR]", console.ColorRed, "scan loop exited: %v", err)
		}
	}()

	sinks := buildSinks(cfg, useDBusStatsFlag)
	emitters := buildEmitters(cfg)

	go sensorctx.Watchdog(ctx, time.Duration(cfg.RebootHour)*time.Hour, cancel)

	reportTicker := time.NewTicker(scanReportInterval)
	defer reportTicker.Stop()
	evictionTicker := time.NewTicker(evictionInterval)
	defer evictionTicker.Stop()
	broadcastTicker := time.NewTicker(selfBroadcastEvery)
	defer broadcastTicker.Stop()
	apStatsTicker := time.NewTicker(apStatsInterval)
	defer apStatsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			console.Line("[EXIT]", console.ColorGray, "shutting down")
			return

		case <-reportTicker.C:
			runReportTick(ctx, st, model, recordingStore, beacons, sinks, emitters)

		case <-evictionTicker.C:
			runEvictionTick(ctx, st, store, session)

		case <-broadcastTicker.C:
			broadcastSelf(meshTransport, cfg, self)

		case <-apStatsTicker.C:
			logAccessPointStats(st)
		}
	}
}

func printBanner() {
	fmt.Println("occusensor — BLE occupancy mesh sensor")
}

// meshMessageHandler folds an inbound peer message into the shared
// state: access-point bookkeeping (sequence gaps, environment) for
// access-point messages, a closest-ring entry for device messages
// (§4.F, §4.G).
func meshMessageHandler(st *state.State) mesh.Handler {
	return func(m mesh.Message) {
		st.With(func() {
			ap, _ := st.AccessPoints.GetOrCreate(m.From)
			missed := st.AccessPoints.ObserveSequence(m.From, m.Seq)
			if missed > 0 {
				console.Linef("[MESH]", console.ColorYellow, "%s missed %d message(s)", m.From, missed)
			}

			if !m.IsDeviceMessage() {
				if m.Short != "" {
					ap.Short = m.Short
				}
				if m.Description != "" {
					ap.Description = m.Description
				}
				if m.Platform != "" {
					ap.Platform = m.Platform
				}
				if m.RSSIOneMeter != nil {
					ap.RSSIOneMeter = *m.RSSIOneMeter
				}
				if m.RSSIFactor != nil {
					ap.RSSIFactor = *m.RSSIFactor
				}
				if m.PeopleDistance != nil {
					ap.PeopleDistance = *m.PeopleDistance
				}
				setEnv := func(dst, v *float64) {
					if v != nil {
						*dst, ap.Environment.HasReading = *v, true
					}
				}
				setEnv(&ap.Environment.Temperature, m.Temperature)
				setEnv(&ap.Environment.Humidity, m.Humidity)
				setEnv(&ap.Environment.Pressure, m.Pressure)
				setEnv(&ap.Environment.CO2, m.CO2)
				setEnv(&ap.Environment.VOC, m.VOC)
				setEnv(&ap.Environment.Brightness, m.Brightness)
				if m.WiFi != nil {
					ap.Environment.WiFi, ap.Environment.HasReading = *m.WiFi, true
				}
				return
			}

			mac := strings.ToLower(m.MAC)
			entry := closest.Entry{
				MAC:          mac,
				AccessPointID: ap.ID,
				Name:         m.Name,
				Category:     device.ParseCategory(m.Category),
			}
			now := time.Now()
			entry.Latest = now
			entry.Earliest = now
			if m.Earliest != nil {
				entry.Earliest = time.Unix(*m.Earliest, 0)
			}
			if m.Latest != nil {
				entry.Latest = time.Unix(*m.Latest, 0)
			}
			if m.Distance != nil {
				entry.Distance = *m.Distance
			}
			if m.Count != nil {
				entry.Count = *m.Count
			}
			if m.NameType != nil {
				entry.NameType = device.NameType(*m.NameType)
			}
			if m.AddressType != nil {
				entry.AddressType = device.AddressType(*m.AddressType)
			}

			if local, ok := st.Devices.Get(mac); ok {
				local.MergeRemote(remoteObservation(m), clockSafe(m, now))
			}

			st.Closest.Add(entry)
		})
	}
}

// clockSafe reports whether a device message's `latest` timestamp agrees
// with our own clock to within the mesh's zero-skew tolerance (§4.B
// "safe means the source clock and ours agree to within 0 s").
func clockSafe(m mesh.Message, now time.Time) bool {
	return m.Latest != nil && now.Unix() == *m.Latest
}

// remoteObservation translates a device message's optional wire fields
// into the shape device.MergeRemote expects (§4.F, §6).
func remoteObservation(m mesh.Message) device.RemoteObservation {
	r := device.RemoteObservation{
		Name:     m.Name,
		Category: device.ParseCategory(m.Category),
	}
	if m.NameType != nil {
		r.NameType = device.NameType(*m.NameType)
	}
	if m.AddressType != nil {
		r.AddressType = device.AddressType(*m.AddressType)
	}
	if m.FilteredRSSI != nil {
		r.FilteredRSSI = int(*m.FilteredRSSI)
	}
	if m.RawRSSI != nil {
		r.RawRSSI = *m.RawRSSI
	}
	if m.Distance != nil {
		r.Distance = *m.Distance
	}
	if m.Count != nil {
		r.Count = *m.Count
	}
	if m.Earliest != nil {
		r.Earliest = time.Unix(*m.Earliest, 0)
	}
	if m.Latest != nil {
		r.Latest = time.Unix(*m.Latest, 0)
	}
	if m.TryConnectState != nil {
		r.TryConnectState = device.TryConnectState(*m.TryConnectState)
	}
	if m.Training != nil {
		r.IsTrainingBeacon = *m.Training != 0
	}
	return r
}

// bleEventHandler turns one raw advertisement into the local device
// table's monotonic merge (§3, §4.B-D), applies the heuristics ladder,
// and folds the result back into the closest ring under the state lock.
func bleEventHandler(st *state.State, resolver *ids.Resolver, cal rssi.Calibration, store *diagstore.Store, session diagstore.Session, model *patchmodel.Model, recordings *patchmodel.Store, beaconAliases []heuristics.BeaconAlias) blesource.Handler {
	return func(ev blesource.Event) {
		if ev.RSSI == nil {
			return
		}
		mac := strings.ToLower(ev.MAC)
		mac64 := macToUint64(mac)
		now := time.Now()

		st.With(func() {
			d, err := st.Devices.Observe(mac, mac64, now)
			if err != nil {
				console.Linef("[TABLE]", console.ColorYellow, "device table full, dropping %s", mac)
				return
			}

			adv := heuristics.Advertisement{MAC: mac, ServiceUUIDs: ev.UUIDs}
			if ev.Name != nil {
				adv.Name = *ev.Name
			}
			if ev.Alias != nil {
				adv.Alias = *ev.Alias
			}
			if ev.Class != nil {
				adv.Class = *ev.Class
			}
			if ev.Appearance != nil {
				adv.Appearance = *ev.Appearance
			}
			if ev.Icon != nil {
				adv.Icon = *ev.Icon
			}
			for _, m := range ev.ManufacturerData {
				adv.ManufacturerID = m.CompanyID
				adv.ManufacturerData = m.Data
				break
			}
			heuristics.Apply(d, resolver, adv)
			heuristics.ApplyBeaconAlias(d, beaconAliases, adv.Name)

			if ev.Paired != nil {
				d.Paired = *ev.Paired
			}
			if ev.Connected != nil {
				d.Connected = *ev.Connected
			}
			if ev.Trusted != nil {
				d.Trusted = *ev.Trusted
			}

			secondsSinceSend := now.Sub(d.LastSent).Seconds()
			_, shouldSend := rssi.Update(d, cal, int(*ev.RSSI), secondsSinceSend)

			entry := closest.Entry{
				MAC:          mac,
				AccessPointID: st.Self.ID,
				Earliest:     d.Earliest,
				Latest:       now,
				Distance:     d.Distance,
				Category:     d.Category,
				Count:        d.Count,
				Name:         d.Name,
				NameType:     d.NameType,
				AddressType:  d.AddressType,
			}
			st.Closest.Add(entry)

			if shouldSend {
				d.LastSent = now
			}

			vec := vectorFor(st, mac)
			result := knn.Classify(recordings.Recordings(), vec)
			if knn.ShouldHarvest(result.BestDistance, d.IsTrainingBeacon) {
				if err := patchmodel.Harvest("./data/beacons", d.Name, vectorByClientID(st, vec)); err != nil {
					console.Linef("[PATCH]", console.ColorYellow, "harvest failed for %s: %v", mac, err)
				}
				if err := store.RecordHarvest(context.Background(), session.ID, d.Name, result.BestDistance); err != nil {
					console.Linef("[DIAG]", console.ColorYellow, "failed to record harvest: %v", err)
				}
			}
		})
	}
}

func vectorFor(st *state.State, mac string) knn.Vector {
	vec := make(knn.Vector)
	for _, e := range st.Closest.ForMAC(mac) {
		vec[e.AccessPointID] = e.Distance
	}
	return vec
}

// vectorByClientID translates a live integer-keyed distance vector back
// to the client_id-keyed shape recording files use on disk (§6
// "Recording JSONL"), so a harvested sample loads the same way a
// hand-curated one does.
func vectorByClientID(st *state.State, vec knn.Vector) map[string]float64 {
	out := make(map[string]float64, len(vec))
	for apID, meters := range vec {
		if ap, ok := st.AccessPoints.ByID(apID); ok {
			out[ap.ClientID] = meters
		}
	}
	return out
}

// buildCandidates groups the ring's entries by MAC into the
// successor-inference input (§4.H), using each MAC's most recently
// updated entry as its identity view.
func buildCandidates(ring *closest.Ring) []overlap.Candidate {
	byMAC := make(map[string][]closest.Entry)
	for _, e := range ring.All() {
		byMAC[e.MAC] = append(byMAC[e.MAC], e)
	}

	candidates := make([]overlap.Candidate, 0, len(byMAC))
	for mac, entries := range byMAC {
		latest := entries[0]
		earliest := entries[0].Earliest
		vec := make(knn.Vector, len(entries))
		for _, e := range entries {
			if e.Latest.After(latest.Latest) {
				latest = e
			}
			if e.Earliest.Before(earliest) {
				earliest = e.Earliest
			}
			vec[e.AccessPointID] = e.Distance
		}
		candidates = append(candidates, overlap.Candidate{
			MAC: mac,
			View: overlap.View{
				MAC:         mac,
				AddressType: latest.AddressType,
				NameType:    latest.NameType,
				Name:        latest.Name,
				Category:    latest.Category,
				Earliest:    earliest,
				Latest:      latest.Latest,
				Count:       latest.Count,
			},
			Vector:  vec,
			Entries: entries,
		})
	}
	return candidates
}

func macToUint64(mac string) uint64 {
	mac = strings.ReplaceAll(mac, ":", "")
	mac = strings.ReplaceAll(mac, "-", "")
	v, err := strconv.ParseUint(mac, 16, 64)
	if err != nil {
		return 0
	}
	return v
}

func broadcastSelf(t *mesh.Transport, cfg config.Config, self *accesspoint.AccessPoint) {
	msg := mesh.Message{
		From:           cfg.HostName,
		Short:          cfg.HostName,
		Description:    cfg.HostDescription,
		Platform:       cfg.HostPlatform,
		RSSIOneMeter:   mesh.IntPtr(cfg.RSSIOneMeter),
		RSSIFactor:     mesh.Float64Ptr(cfg.RSSIFactor),
		PeopleDistance: mesh.Float64Ptr(cfg.PeopleDistance),
		Seq:            nextSeq(),
	}
	if err := t.Broadcast(msg); err != nil {
		console.Linef("[MESH]", console.ColorYellow, "broadcast failed: %v", err)
	}
}

var seqCounter int64

func nextSeq() int64 {
	seqCounter++
	return seqCounter
}

func runEvictionTick(ctx context.Context, st *state.State, store *diagstore.Store, session diagstore.Session) {
	now := time.Now()
	st.With(func() {
		removed := st.Devices.Evict(now, func(mac string) {
			console.Linef("[EVICT]", console.ColorGray, "%s entering stage 1", mac)
		})
		for _, mac := range removed {
			if err := store.RecordEviction(ctx, session.ID, mac, "stage2"); err != nil {
				console.Linef("[DIAG]", console.ColorYellow, "failed to record eviction: %v", err)
			}
		}
	})
}

func runReportTick(ctx context.Context, st *state.State, m *patchmodel.Model, recordings *patchmodel.Store, beacons []snapshot.BeaconConfig, sinks map[string]egress.Sink, emitters map[string]*snapshot.Emitter) {
	now := time.Now()

	var ring *closest.Ring
	var superseded overlap.Assignment

	st.With(func() {
		ring = st.Closest
		superseded = overlap.RunPass(buildCandidates(ring))
		aggregator.Run(now, ring, superseded, recordings.Recordings(), m)
	})

	lookup := func(mac string) (string, time.Time, bool) {
		entries := ring.ForMAC(mac)
		if len(entries) == 0 {
			return "", time.Time{}, false
		}
		best := entries[0]
		for _, e := range entries[1:] {
			if e.Latest.After(best.Latest) {
				best = e
			}
		}
		return best.Name, best.Latest, true
	}

	peoplePresent := peoplePresentNow(st, now)
	snap := snapshot.Build(now, m, beacons, lookup, 1.0, peoplePresent)
	hash := m.Hash()

	g, gctx := errgroup.WithContext(ctx)
	for name, sink := range sinks {
		emitter := emitters[name]
		if emitter != nil && !emitter.ShouldEmit(now, hash) {
			continue
		}
		g.Go(func() error {
			if err := sink.Send(gctx, snap); err != nil {
				console.Linef("[EGRESS]", console.ColorYellow, "%s send failed: %v", name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// peoplePresentNow packs the local device table's entries into
// non-overlapping columns (§4.M) and sums the in-range columns'
// freshness-weighted phone count.
func peoplePresentNow(st *state.State, now time.Time) float64 {
	var present float64
	st.With(func() {
		items := make([]occupancy.Item, 0, st.Devices.Len())
		for _, d := range st.Devices.All() {
			entries := st.Closest.ForMAC(d.MAC)
			if len(entries) == 0 {
				continue
			}
			items = append(items, occupancy.Item{
				View: overlap.View{
					MAC:         d.MAC,
					AddressType: d.AddressType,
					NameType:    d.NameType,
					Name:        d.Name,
					Category:    d.Category,
					Earliest:    d.Earliest,
					Latest:      d.LatestAny,
					Count:       d.Count,
				},
				Entries:  entries,
				Distance: d.Distance,
			})
		}
		columns := occupancy.Pack(items)
		present = occupancy.PeoplePresent(now, columns)
	})
	return present
}

func logAccessPointStats(st *state.State) {
	for _, stats := range st.AccessPoints.MissedStats() {
		console.Linef("[MESH]", console.ColorGray, "%+v", stats)
	}
}

func buildSinks(cfg config.Config, useDBus *bool) map[string]egress.Sink {
	sinks := make(map[string]egress.Sink)

	if cfg.MQTT.Server != "" {
		onExit := func(reason string) {
			console.Linef("[MQTT]", console.ColorRed, "fatal: %s", reason)
			os.Exit(1)
		}
		m := mqttsink.NewSink(cfg.MQTT.Topic, cfg.HostName, "", cfg.MQTT.Server, cfg.MQTT.Username, cfg.MQTT.Password, onExit)
		if err := m.Connect(); err != nil {
			console.Linef("[MQTT]", console.ColorYellow, "initial connect failed, will retry: %v", err)
		}
		sinks["mqtt"] = m
	}

	if cfg.Influx.Server != "" {
		sinks["influx"] = influxsink.NewSink(cfg.Influx.Server, cfg.Influx.Port, cfg.Influx.Database, cfg.Influx.Username, cfg.Influx.Password)
	}

	if cfg.Webhook.Domain != "" {
		sinks["webhook"] = webhooksink.NewSink(cfg.Webhook.Domain, cfg.Webhook.Port, cfg.Webhook.Path)
	}

	if cfg.UDPSignPort != 0 {
		if u, err := udpsink.Open(cfg.UDPSignPort, func(snap snapshot.Snapshot) []udpsink.GroupCount {
			out := make([]udpsink.GroupCount, 0, len(snap.Groups))
			for _, g := range snap.Groups {
				out = append(out, udpsink.GroupCount{Group: g.Group, Count: int(g.Totals.Phone)})
			}
			return out
		}); err == nil {
			sinks["udp"] = u
		} else {
			console.Linef("[UDP]", console.ColorYellow, "display sink unavailable: %v", err)
		}
	}

	if useDBus != nil && *useDBus {
		if d, err := dbusstatus.Open(); err == nil {
			sinks["dbus"] = d
		} else {
			console.Linef("[DBUS]", console.ColorYellow, "status service unavailable: %v", err)
		}
	}

	return sinks
}

func buildEmitters(cfg config.Config) map[string]*snapshot.Emitter {
	emitters := make(map[string]*snapshot.Emitter)
	emitters["mqtt"] = snapshot.NewEmitter(snapshot.DefaultMinPeriod, snapshot.DefaultMaxPeriod)
	emitters["dbus"] = snapshot.NewEmitter(snapshot.DefaultMinPeriod, snapshot.DefaultMaxPeriod)
	emitters["udp"] = snapshot.NewEmitter(time.Second, 10*time.Second)

	if cfg.Influx.MinPeriod > 0 || cfg.Influx.MaxPeriod > 0 {
		min, max := cfg.Influx.MinPeriod, cfg.Influx.MaxPeriod
		if min == 0 {
			min = snapshot.DefaultMinPeriod
		}
		if max == 0 {
			max = snapshot.DefaultMaxPeriod
		}
		emitters["influx"] = snapshot.NewEmitter(min, max)
	} else {
		emitters["influx"] = snapshot.NewEmitter(snapshot.DefaultMinPeriod, snapshot.DefaultMaxPeriod)
	}

	if cfg.Webhook.MinPeriod > 0 || cfg.Webhook.MaxPeriod > 0 {
		min, max := cfg.Webhook.MinPeriod, cfg.Webhook.MaxPeriod
		if min == 0 {
			min = snapshot.DefaultMinPeriod
		}
		if max == 0 {
			max = snapshot.DefaultMaxPeriod
		}
		emitters["webhook"] = snapshot.NewEmitter(min, max)
	} else {
		emitters["webhook"] = snapshot.NewEmitter(snapshot.DefaultMinPeriod, snapshot.DefaultMaxPeriod)
	}

	return emitters
}

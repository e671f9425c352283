package blesource

import (
	"context"
	"strings"

	"github.com/godbus/dbus/v5"
)

// BlueZSupplement fills in the classic-Bluetooth properties a raw LE
// scan result doesn't carry (paired/connected/trusted/class/appearance/
// icon, §6) from BlueZ's org.bluez.Device1 D-Bus object, grounded on
// the teacher's bluezSnapshot ObjectManager walk.
type BlueZSupplement struct {
	AdapterID string
	Conn      *dbus.Conn
}

// OpenBlueZSupplement connects to the system bus for classic-property
// lookups. Returns a nil *BlueZSupplement with no error if BlueZ is
// unreachable, so callers can run without it (LE-only deployments).
func OpenBlueZSupplement(adapterID string) (*BlueZSupplement, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	return &BlueZSupplement{AdapterID: adapterID, Conn: conn}, nil
}

// Supplement fills ev's classic-property fields in place, best-effort.
// A lookup failure leaves ev unchanged — BlueZ may not yet have
// completed its own GATT-less discovery of a device this process only
// just saw over LE.
func (b *BlueZSupplement) Supplement(ctx context.Context, ev *Event) {
	dev1, ok := b.deviceProperties(ctx, ev.MAC)
	if !ok {
		return
	}
	if v, ok := dev1["Paired"]; ok {
		if bv, ok := v.Value().(bool); ok {
			ev.Paired = &bv
		}
	}
	if v, ok := dev1["Connected"]; ok {
		if bv, ok := v.Value().(bool); ok {
			ev.Connected = &bv
		}
	}
	if v, ok := dev1["Trusted"]; ok {
		if bv, ok := v.Value().(bool); ok {
			ev.Trusted = &bv
		}
	}
	if v, ok := dev1["Class"]; ok {
		if cv, ok := v.Value().(uint32); ok {
			ev.Class = &cv
		}
	}
	if v, ok := dev1["Appearance"]; ok {
		switch av := v.Value().(type) {
		case uint16:
			ev.Appearance = &av
		case int16:
			u := uint16(av)
			ev.Appearance = &u
		}
	}
	if v, ok := dev1["Icon"]; ok {
		if sv, ok := v.Value().(string); ok {
			ev.Icon = &sv
		}
	}
	if v, ok := dev1["Alias"]; ok {
		if sv, ok := v.Value().(string); ok {
			ev.Alias = &sv
		}
	}
}

func (b *BlueZSupplement) deviceProperties(ctx context.Context, mac string) (map[string]dbus.Variant, bool) {
	root := b.Conn.Object("org.bluez", dbus.ObjectPath("/"))
	call := root.CallWithContext(ctx, "org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0)
	if call.Err != nil {
		return nil, false
	}

	var managed map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := call.Store(&managed); err != nil {
		return nil, false
	}

	prefix := "/org/bluez/" + b.AdapterID + "/dev_"
	for path, ifaces := range managed {
		if !strings.HasPrefix(string(path), prefix) {
			continue
		}
		dev1, ok := ifaces["org.bluez.Device1"]
		if !ok {
			continue
		}
		addr, ok := dev1["Address"]
		if !ok {
			continue
		}
		addrStr, ok := addr.Value().(string)
		if !ok || !strings.EqualFold(addrStr, mac) {
			continue
		}
		return dev1, true
	}
	return nil, false
}

// Package config reads process parameterization from the environment
// and the optional JSON configuration file (§6), in the teacher's
// best-effort, never-fatal-on-missing style (see internal/ids.Load).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// MQTT holds the MQTT egress channel's connection parameters.
type MQTT struct {
	Topic    string
	Server   string
	Username string
	Password string
}

// Influx holds the InfluxDB line-protocol egress channel's parameters.
type Influx struct {
	Server    string
	Port      int
	Database  string
	Username  string
	Password  string
	MinPeriod time.Duration
	MaxPeriod time.Duration
}

// Webhook holds the generic JSON-POST egress channel's parameters.
type Webhook struct {
	Domain    string
	Port      int
	Path      string
	MinPeriod time.Duration
	MaxPeriod time.Duration
}

// Config is every environment-sourced setting listed in §6.
type Config struct {
	HostName        string
	HostDescription string
	HostPlatform    string
	RSSIOneMeter    int
	RSSIFactor      float64
	PeopleDistance  float64
	UDPMeshPort     int
	UDPSignPort     int
	UDPScaleFactor  float64
	MQTT            MQTT
	Influx          Influx
	Webhook         Webhook
	ConfigPath      string
	Verbosity       int
	RebootHour      int
}

// Defaults match the original source's compiled-in constants where §6
// doesn't specify an override.
func Defaults() Config {
	return Config{
		RSSIOneMeter:   -64,
		RSSIFactor:     3.5,
		PeopleDistance: 10,
		UDPMeshPort:    7779,
		UDPSignPort:    7780,
		UDPScaleFactor: 1.0,
		ConfigPath:     "/etc/sniffer/config.json",
		RebootHour:     24,
	}
}

// FromEnv overlays os.Getenv values onto Defaults() (§6 "Environment
// variables"). Malformed numeric values are logged by the caller (via
// the returned error) and left at their default.
func FromEnv() (Config, error) {
	cfg := Defaults()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	str("HOST_NAME", &cfg.HostName)
	str("HOST_DESCRIPTION", &cfg.HostDescription)
	str("HOST_PLATFORM", &cfg.HostPlatform)
	str("CONFIG", &cfg.ConfigPath)
	str("MQTT_TOPIC", &cfg.MQTT.Topic)
	str("MQTT_SERVER", &cfg.MQTT.Server)
	str("MQTT_USERNAME", &cfg.MQTT.Username)
	str("MQTT_PASSWORD", &cfg.MQTT.Password)
	str("INFLUX_SERVER", &cfg.Influx.Server)
	str("INFLUX_DATABASE", &cfg.Influx.Database)
	str("INFLUX_USERNAME", &cfg.Influx.Username)
	str("INFLUX_PASSWORD", &cfg.Influx.Password)
	str("WEBHOOK_DOMAIN", &cfg.Webhook.Domain)
	str("WEBHOOK_PATH", &cfg.Webhook.Path)

	intVar := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}
	intVar("RSSI_ONE_METER", &cfg.RSSIOneMeter)
	intVar("UDP_MESH_PORT", &cfg.UDPMeshPort)
	intVar("UDP_SIGN_PORT", &cfg.UDPSignPort)
	intVar("VERBOSITY", &cfg.Verbosity)
	intVar("REBOOT_HOUR", &cfg.RebootHour)
	intVar("INFLUX_PORT", &cfg.Influx.Port)
	intVar("WEBHOOK_PORT", &cfg.Webhook.Port)

	floatVar := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
				return
			}
			*dst = f
		}
	}
	floatVar("RSSI_FACTOR", &cfg.RSSIFactor)
	floatVar("PEOPLE_DISTANCE", &cfg.PeopleDistance)
	floatVar("UDP_SCALE_FACTOR", &cfg.UDPScaleFactor)

	durationVar := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
				return
			}
			*dst = time.Duration(n) * time.Second
		}
	}
	durationVar("INFLUX_MIN_PERIOD", &cfg.Influx.MinPeriod)
	durationVar("INFLUX_MAX_PERIOD", &cfg.Influx.MaxPeriod)
	durationVar("WEBHOOK_MIN_PERIOD", &cfg.Webhook.MinPeriod)
	durationVar("WEBHOOK_MAX_PERIOD", &cfg.Webhook.MaxPeriod)

	if len(errs) > 0 {
		return cfg, fmt.Errorf("config: %d malformed environment variable(s), first: %w", len(errs), errs[0])
	}
	return cfg, nil
}

// SensorEntry is one entry of the config file's optional `sensors` array.
type SensorEntry struct {
	Name string `json:"name"`
}

// BeaconEntry is one entry of the config file's optional `beacons` array
// (§6 "beacons: [{name, mac, alias}]").
type BeaconEntry struct {
	Name  string `json:"name"`
	MAC   string `json:"mac"`
	Alias string `json:"alias"`
}

// FileConfig is the shape of the optional JSON configuration file
// (§6 "Configuration JSON").
type FileConfig struct {
	Sensors []SensorEntry `json:"sensors"`
	Beacons []BeaconEntry `json:"beacons"`
}

// LoadFile reads and parses path, tolerating a missing file by
// returning a zero-value FileConfig and no error (§7 "Configuration
// missing: log, run with empty config").
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	body, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(body, &fc); err != nil {
		return fc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc, nil
}

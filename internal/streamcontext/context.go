// Package streamcontext models the surrounding stream-processor context
// the store assumes but never owns: a state directory and a counter for
// retention-dropped records. Stream time is not modeled here; the store
// facade tracks it as observedStreamTime. algorithm.StreamContext
// is the narrow slice of this the put/get algorithms actually touch;
// DefaultStreamContext is the concrete implementation the public Store
// wires in by default.
package streamcontext

import (
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/embeddedkv/versionedstore/pkg/filesys"
)

// Context is the full surface the store facade needs from its
// surrounding environment. algorithm.StreamContext is satisfied by any
// Context, but stays separate so the algorithm package never imports
// Prometheus directly.
type Context interface {
	StateDir() string
	RecordExpired()
}

// DefaultStreamContext roots its state directory under a parent directory
// and reports expired-record events through a Prometheus counter, the one
// externally observable counter §6 of the spec calls out.
type DefaultStreamContext struct {
	stateDir string
	expired  prometheus.Counter
}

// New creates the state directory "<parentDir>/<name>.state" and registers
// an "expired-record events" counter for instance name.
func New(parentDir, name string) (*DefaultStreamContext, error) {
	stateDir := filepath.Join(parentDir, name+".state")
	if err := filesys.CreateDir(stateDir, 0755, true); err != nil {
		return nil, err
	}
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "versionedkv_expired_records_total",
		Help:        "Puts dropped because they fell outside the history retention window.",
		ConstLabels: prometheus.Labels{"store": name},
	})
	return &DefaultStreamContext{stateDir: stateDir, expired: counter}, nil
}

// StateDir returns the directory this store instance may use for its own
// on-disk state, distinct from the backing engine's data file.
func (c *DefaultStreamContext) StateDir() string { return c.stateDir }

// RecordExpired increments the expired-record counter. Called once per
// retention-dropped put (§4.5.2 Case C and the "segment not live" branches
// of §4.5.4) — never on the query side, which returns none silently.
func (c *DefaultStreamContext) RecordExpired() { c.expired.Inc() }

// Collector exposes the underlying Prometheus counter so the embedding
// process can register it on its own registry.
func (c *DefaultStreamContext) Collector() prometheus.Collector { return c.expired }

// ExpiredCount reads the current counter value, used by the CLI's `stats`
// subcommand and by tests.
func (c *DefaultStreamContext) ExpiredCount() float64 {
	var m dto.Metric
	_ = c.expired.Write(&m)
	return m.GetCounter().GetValue()
}

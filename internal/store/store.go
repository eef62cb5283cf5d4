// Package store implements the Store Facade (C7): configuration, observed
// stream time, and the open/closed lifecycle wrapped around the C4 client
// that the put/get algorithms drive.
package store

import (
	"errors"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/embeddedkv/versionedstore/internal/algorithm"
	"github.com/embeddedkv/versionedstore/internal/client"
	"github.com/embeddedkv/versionedstore/internal/kvengine"
	bboltengine "github.com/embeddedkv/versionedstore/internal/kvengine/bbolt"
	"github.com/embeddedkv/versionedstore/internal/segments"
	"github.com/embeddedkv/versionedstore/internal/streamcontext"
	"github.com/embeddedkv/versionedstore/pkg/options"
)

// ErrStoreClosed is returned when a data-path operation is attempted
// against a closed store (§7 category 3). Guaranteed to surface before any
// I/O, since the closed flag is always the first thing checked.
var ErrStoreClosed = errors.New("operation failed: cannot access closed store")

// unsetStreamTime is the "unset" sentinel for observedStreamTime: a negative
// value, outside the non-negative timestamp domain SegmentID requires, so
// the first real put or delete unconditionally advances past it. Queries do
// not advance it; -1 keeps observedStreamTime-historyRetention in GetAsOf
// from overflowing, so a query before any put is not rejected as expired.
const unsetStreamTime = int64(-1)

// Store holds everything §4.7 assigns the facade: name, H, S, the backing
// column handles, observedStreamTime, and the open/closed flag.
type Store struct {
	name             string
	historyRetention int64
	segmentInterval  int64
	log              *zap.SugaredLogger

	// closed is the one field §5 requires memory-visibility guarantees for:
	// written by Close, read by every data-path entry point.
	closed atomic.Bool

	// observedStreamTime is data-path-only state (single-threaded per §5),
	// so a plain field suffices — no atomic needed here.
	observedStreamTime int64

	engine    kvengine.Engine
	latest    kvengine.Column
	registry  *segments.Registry
	client    client.Client
	streamCtx streamcontext.Context
}

// Config bundles everything Open needs to bring up a store instance.
type Config struct {
	Options   options.Options
	Logger    *zap.SugaredLogger
	StreamCtx streamcontext.Context
}

// Open validates config.Options, opens the backing engine's data file, and
// wires the latest-tier column and segment registry together behind one
// client.Client. Latest tier and segments live in the same bbolt file as
// sibling top-level buckets ("<name>.latestValues" and "<name>.segments");
// there is no independent resource to close between them, so the ordering
// §4.7 describes for close() (latest tier first, so get() fails fast) is
// provided entirely by the closed flag below, checked before any I/O is
// attempted — not by separately tearing down two engine handles.
func Open(config *Config) (*Store, error) {
	if err := config.Options.Validate(); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(config.Options.DataDir, config.Options.Name+".db")
	engine, err := bboltengine.Open(dbPath)
	if err != nil {
		return nil, err
	}

	latest, err := engine.Column(config.Options.Name + ".latestValues")
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	segmentsCol, err := engine.Column(config.Options.Name + ".segments")
	if err != nil {
		_ = engine.Close()
		return nil, err
	}

	historyRetention := int64(config.Options.HistoryRetention)
	segmentInterval := int64(config.Options.SegmentInterval)
	registry := segments.NewRegistry(segmentsCol, segmentInterval, historyRetention, config.Logger)
	c := client.NewLive(latest, registry)

	config.Logger.Infow("opened store",
		"name", config.Options.Name,
		"dataDir", config.Options.DataDir,
		"historyRetention", config.Options.HistoryRetention,
		"segmentInterval", config.Options.SegmentInterval,
	)

	return &Store{
		name:               config.Options.Name,
		historyRetention:   historyRetention,
		segmentInterval:    segmentInterval,
		log:                config.Logger,
		observedStreamTime: unsetStreamTime,
		engine:             engine,
		latest:             latest,
		registry:           registry,
		client:             c,
		streamCtx:          config.StreamCtx,
	}, nil
}

// Name returns the store's configured name.
func (s *Store) Name() string { return s.name }

// IsOpen reports whether the store can still serve data-path operations.
func (s *Store) IsOpen() bool { return !s.closed.Load() }

// Persistent always returns true: every record this store holds survives
// past process restart via the backing engine's durable file.
func (s *Store) Persistent() bool { return true }

// ExpiredCount reports the number of retention-dropped operations so far,
// when the wired StreamContext exposes one (DefaultStreamContext does).
func (s *Store) ExpiredCount() (float64, bool) {
	type counter interface{ ExpiredCount() float64 }
	if c, ok := s.streamCtx.(counter); ok {
		return c.ExpiredCount(), true
	}
	return 0, false
}

// advance folds timestamp into observedStreamTime = max(observedStreamTime,
// timestamp) and expires every segment that has aged out of the retention
// window as of the new observedStreamTime. §4.3 requires expiry "on each
// call that advances streamTime", not just on calls that happen to create a
// segment — GetOrCreateIfLive's own Expire call only fires on Put paths that
// touch the segment tier, which latest-tier-only writes (a brand-new key, or
// a same-timestamp overwrite) never do. Calling Expire here too means every
// Put/Delete drives retention regardless of which tier it actually writes.
func (s *Store) advance(timestamp int64) error {
	if timestamp > s.observedStreamTime {
		s.observedStreamTime = timestamp
	}
	return s.registry.Expire(s.observedStreamTime)
}

// Put places (key, value, timestamp); value == nil is a tombstone/delete.
func (s *Store) Put(key, value []byte, timestamp int64) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if err := s.advance(timestamp); err != nil {
		return err
	}
	return algorithm.Put(s.client, s.streamCtx, s.observedStreamTime, s.historyRetention, key, value, timestamp)
}

// Delete is equivalent to `g := GetAsOf(key, timestamp); Put(key, nil, timestamp); return g`.
func (s *Store) Delete(key []byte, timestamp int64) (value []byte, validFrom int64, found bool, err error) {
	if s.closed.Load() {
		return nil, 0, false, ErrStoreClosed
	}
	value, validFrom, found, err = s.getAsOfLocked(key, timestamp)
	if err != nil {
		return nil, 0, false, err
	}
	if err := s.advance(timestamp); err != nil {
		return nil, 0, false, err
	}
	if err := algorithm.Put(s.client, s.streamCtx, s.observedStreamTime, s.historyRetention, key, nil, timestamp); err != nil {
		return nil, 0, false, err
	}
	return value, validFrom, found, nil
}

// Get returns the current value of key, reading only the latest tier.
func (s *Store) Get(key []byte) (value []byte, validFrom int64, found bool, err error) {
	if s.closed.Load() {
		return nil, 0, false, ErrStoreClosed
	}
	return algorithm.Get(s.client, key)
}

// GetAsOf returns the version of key valid at asOf.
func (s *Store) GetAsOf(key []byte, asOf int64) (value []byte, validFrom int64, found bool, err error) {
	if s.closed.Load() {
		return nil, 0, false, ErrStoreClosed
	}
	return s.getAsOfLocked(key, asOf)
}

func (s *Store) getAsOfLocked(key []byte, asOf int64) ([]byte, int64, bool, error) {
	return algorithm.GetAsOf(s.client, s.observedStreamTime, s.historyRetention, asOf, key)
}

// Flush flushes the backing engine. Per §4.7 the segment tier flushes
// before the latest tier so that, if a crash lands between the two, only
// segment data (never a latest-tier pointer to something not yet durable)
// survives; here both tiers are columns of one bbolt file sharing a single
// fsync, so the ordering is preserved trivially rather than sequenced.
func (s *Store) Flush() error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.engine.Flush()
}

// Close transitions the store to closed and releases the backing engine.
// The atomic flag flips first, so any get already past that check
// completes against still-valid state, and every subsequent call fails
// fast with ErrStoreClosed before touching the engine at all.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStoreClosed
	}
	return s.engine.Close()
}

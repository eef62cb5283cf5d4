// Package versionedkv is the public entry point for the persistent
// versioned key-value store: a thin wrapper around the internal Store
// Facade that applies functional options, wires a logger and stream
// context, and exposes the operations enumerated in spec §4/§6.
package versionedkv

import (
	"go.uber.org/zap"

	"github.com/embeddedkv/versionedstore/internal/store"
	"github.com/embeddedkv/versionedstore/internal/streamcontext"
	"github.com/embeddedkv/versionedstore/pkg/options"
)

// VersionedRecord is the (value, validFrom) pair every read operation
// returns; tombstones are never surfaced here.
type VersionedRecord struct {
	Value     []byte
	ValidFrom int64
}

// Instance is the primary handle applications hold for one store.
type Instance struct {
	store     *store.Store
	streamCtx *streamcontext.DefaultStreamContext
}

// Open brings up a store instance: it validates options, creates the
// state directory and data directory, opens the backing engine, and
// wires the default Prometheus-backed stream context.
func Open(opts ...options.OptionFunc) (*Instance, error) {
	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	log, err := newLogger(resolved.Name)
	if err != nil {
		return nil, err
	}

	streamCtx, err := streamcontext.New(resolved.DataDir, resolved.Name)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(&store.Config{Options: resolved, Logger: log, StreamCtx: streamCtx})
	if err != nil {
		return nil, err
	}

	return &Instance{store: s, streamCtx: streamCtx}, nil
}

func newLogger(name string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar().With("store", name), nil
}

// Put places (key, value) as of timestamp. value == nil deletes the key.
func (i *Instance) Put(key, value []byte, timestamp int64) error {
	return i.store.Put(key, value, timestamp)
}

// Delete removes key as of timestamp and returns the as-of-timestamp value
// that was current immediately before the delete, if any.
func (i *Instance) Delete(key []byte, timestamp int64) (*VersionedRecord, error) {
	value, validFrom, found, err := i.store.Delete(key, timestamp)
	if err != nil || !found {
		return nil, err
	}
	return &VersionedRecord{Value: value, ValidFrom: validFrom}, nil
}

// Get returns the current value of key.
func (i *Instance) Get(key []byte) (*VersionedRecord, error) {
	value, validFrom, found, err := i.store.Get(key)
	if err != nil || !found {
		return nil, err
	}
	return &VersionedRecord{Value: value, ValidFrom: validFrom}, nil
}

// GetAsOf returns the version of key valid at asOf.
func (i *Instance) GetAsOf(key []byte, asOf int64) (*VersionedRecord, error) {
	value, validFrom, found, err := i.store.GetAsOf(key, asOf)
	if err != nil || !found {
		return nil, err
	}
	return &VersionedRecord{Value: value, ValidFrom: validFrom}, nil
}

// Name returns the store's configured name.
func (i *Instance) Name() string { return i.store.Name() }

// IsOpen reports whether the instance can still serve data-path operations.
func (i *Instance) IsOpen() bool { return i.store.IsOpen() }

// Persistent always returns true.
func (i *Instance) Persistent() bool { return i.store.Persistent() }

// ExpiredCount reports how many operations were dropped for falling
// outside the history retention window.
func (i *Instance) ExpiredCount() float64 {
	count, _ := i.store.ExpiredCount()
	return count
}

// Flush flushes the backing engine.
func (i *Instance) Flush() error { return i.store.Flush() }

// Close gracefully shuts the instance down, releasing the backing engine.
func (i *Instance) Close() error { return i.store.Close() }

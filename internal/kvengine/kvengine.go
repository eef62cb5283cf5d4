// Package kvengine is the narrow interface the store drives its backing KV
// engine through: get/put/delete plus per-"column-family" scoping, exactly
// the surface spec.md keeps out of the core's scope and describes only by
// interface. Column is deliberately shaped around what the two tiers
// actually need — a flat namespace for the latest tier, and a namespace of
// numerically-keyed sub-namespaces for segments — rather than a
// general-purpose nested-bucket API.
package kvengine

import "errors"

// ErrClosed is returned by the in-memory engine's Column and Flush once its
// Close has run. Column handles obtained before Close keep working there,
// and the bbolt engine reports use after Close as an EngineError wrapping
// bbolt's own error rather than as ErrClosed.
var ErrClosed = errors.New("kvengine: engine is closed")

// Engine is one backing database: it owns the "column families" the store
// divides its data across.
type Engine interface {
	// Column returns (creating if necessary) the named top-level column
	// family, e.g. "<name>.latestValues" or "<name>.segments".
	Column(name string) (Column, error)

	// Flush durably syncs the engine's data to disk.
	Flush() error

	// Close releases the engine's resources. See ErrClosed for how each
	// engine reports calls made after it.
	Close() error
}

// Column is a flat key-value namespace within the engine. The segments
// column family additionally uses the SubColumn* methods to address one
// sub-namespace per segment id, so a segment's keys never collide with
// another segment's or with the latest tier's.
type Column interface {
	// Get returns the value for key, or (nil, nil) if absent.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error

	// SubColumn looks up an existing sub-column by segment id. The second
	// return reports whether it existed.
	SubColumn(id uint64) (Column, bool, error)

	// CreateSubColumnIfNotExists ensures a sub-column exists for id and
	// returns a handle to it.
	CreateSubColumnIfNotExists(id uint64) (Column, error)

	// DeleteSubColumn drops a sub-column and everything in it in one
	// atomic step — used for whole-segment expiry.
	DeleteSubColumn(id uint64) error

	// SubColumnIDsDescendingFrom lists the ids of existing sub-columns
	// that are >= minID, in descending order. This is the access pattern
	// segmentsCoveringFrom needs: newest segments first, stopping once ids
	// fall below the floor.
	SubColumnIDsDescendingFrom(minID uint64) ([]uint64, error)
}

// Package options provides the functional-options configuration for a
// versioned key-value store: the store's name, its data directory, and the
// two parameters that define its retention/sharding behavior — history
// retention (H) and segment interval (S).
package options

import (
	"strings"
	"time"

	apperrors "github.com/embeddedkv/versionedstore/pkg/errors"
)

// Options holds the configuration for one store instance.
type Options struct {
	// Name identifies the store. Used to scope backing-engine bucket names
	// when more than one store shares a data directory.
	Name string `json:"name"`

	// DataDir is the base path where the store's backing engine file and
	// the stream context's state directory live.
	//
	// Default: "/var/lib/versionedkv"
	DataDir string `json:"dataDir"`

	// HistoryRetention (H) is the length of time a version of a key must
	// remain retrievable via GetAsOf before it becomes eligible for expiry.
	// No default — must be explicitly set.
	HistoryRetention time.Duration `json:"historyRetention"`

	// SegmentInterval (S) is the width of one time shard: segmentId(t) =
	// floor(t/S). No default — must be explicitly set.
	SegmentInterval time.Duration `json:"segmentInterval"`
}

// OptionFunc is a function that modifies a store's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies the baseline DataDir. It does not set Name,
// HistoryRetention, or SegmentInterval — those have no safe default.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
	}
}

// WithName sets the store's name.
func WithName(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.Name = name
		}
	}
}

// WithDataDir sets the store's base data directory.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithHistoryRetention sets H, the retention window for historical versions.
func WithHistoryRetention(d time.Duration) OptionFunc {
	return func(o *Options) {
		o.HistoryRetention = d
	}
}

// WithSegmentInterval sets S, the width of one segment time shard.
func WithSegmentInterval(d time.Duration) OptionFunc {
	return func(o *Options) {
		o.SegmentInterval = d
	}
}

// Validate rejects configurations Open cannot safely run with. Unlike the
// segment-size defaulting this package's ancestor used, HistoryRetention and
// SegmentInterval are never silently substituted: a value of zero or less
// would make segmentId arithmetic meaningless or disable expiry outright.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return apperrors.NewRequiredFieldError("Name")
	}
	if strings.TrimSpace(o.DataDir) == "" {
		return apperrors.NewRequiredFieldError("DataDir")
	}
	if o.HistoryRetention <= 0 {
		return apperrors.NewFieldRangeError("HistoryRetention", o.HistoryRetention, "1ns", "unbounded")
	}
	if o.SegmentInterval <= 0 {
		return apperrors.NewFieldRangeError("SegmentInterval", o.SegmentInterval, "1ns", "unbounded")
	}
	return nil
}

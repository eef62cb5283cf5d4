package options

// DefaultDataDir is used when no data directory is supplied — the only
// option with a sane silent default. HistoryRetention and SegmentInterval
// have none: a wrong value there silently corrupts query results rather
// than merely wasting disk, so Open rejects a zero value instead of
// guessing one.
const DefaultDataDir = "/var/lib/versionedkv"

var defaultOptions = Options{DataDir: DefaultDataDir}

// NewDefaultOptions returns the baseline configuration. Name,
// HistoryRetention, and SegmentInterval are left unset; callers must supply
// them or Open will reject the configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/embeddedkv/versionedstore/pkg/options"
	"github.com/embeddedkv/versionedstore/pkg/versionedkv"
)

var (
	dataDir          string
	storeName        string
	historyRetention time.Duration
	segmentInterval  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "versionedkv",
	Short: "Inspect and drive a persistent versioned key-value store",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", options.DefaultDataDir, "base data directory")
	rootCmd.PersistentFlags().StringVar(&storeName, "name", "", "store name (required)")
	rootCmd.PersistentFlags().DurationVar(&historyRetention, "history-retention", 0, "history retention window H (required, e.g. 24h)")
	rootCmd.PersistentFlags().DurationVar(&segmentInterval, "segment-interval", 0, "segment time shard width S (required, e.g. 1h)")

	rootCmd.AddCommand(putCmd, getCmd, deleteCmd, getAsOfCmd, statsCmd)
}

// openInstance opens a store instance against the flags common to every
// subcommand. Each invocation of this CLI is a one-shot operation, so the
// instance is opened and closed around a single command.
func openInstance() (*versionedkv.Instance, error) {
	return versionedkv.Open(
		options.WithName(storeName),
		options.WithDataDir(dataDir),
		options.WithHistoryRetention(historyRetention),
		options.WithSegmentInterval(segmentInterval),
	)
}

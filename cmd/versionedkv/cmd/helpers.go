package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/embeddedkv/versionedstore/pkg/versionedkv"
)

func parseTimestamp(s string) (int64, error) {
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return ts, nil
}

func parseKeyValueTimestamp(args []string) (key, value string, timestamp int64, err error) {
	timestamp, err = parseTimestamp(args[2])
	if err != nil {
		return "", "", 0, err
	}
	return args[0], args[1], timestamp, nil
}

func printRecord(c *cobra.Command, key string, rec *versionedkv.VersionedRecord) {
	if rec == nil {
		fmt.Fprintf(c.OutOrStdout(), "%q: none\n", key)
		return
	}
	fmt.Fprintf(c.OutOrStdout(), "%q = %q (validFrom=%d)\n", key, rec.Value, rec.ValidFrom)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <key> <value> <timestamp>",
	Short: "Put a (key, value) pair as of timestamp",
	Args:  cobra.ExactArgs(3),
	RunE: func(c *cobra.Command, args []string) error {
		key, value, ts, err := parseKeyValueTimestamp(args)
		if err != nil {
			return err
		}

		inst, err := openInstance()
		if err != nil {
			return err
		}
		defer inst.Close()

		if err := inst.Put([]byte(key), []byte(value), ts); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "put %q = %q @ %d\n", key, value, ts)
		return nil
	},
}

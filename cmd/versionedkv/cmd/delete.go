package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key> <timestamp>",
	Short: "Delete key as of timestamp, printing its value just before the delete",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		ts, err := parseTimestamp(args[1])
		if err != nil {
			return err
		}

		inst, err := openInstance()
		if err != nil {
			return err
		}
		defer inst.Close()

		rec, err := inst.Delete([]byte(args[0]), ts)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintf(c.OutOrStdout(), "%q had no value as of %d\n", args[0], ts)
			return nil
		}
		fmt.Fprintf(c.OutOrStdout(), "deleted %q, was %q (validFrom=%d)\n", args[0], rec.Value, rec.ValidFrom)
		return nil
	},
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get the current value of key",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		inst, err := openInstance()
		if err != nil {
			return err
		}
		defer inst.Close()

		rec, err := inst.Get([]byte(args[0]))
		if err != nil {
			return err
		}
		printRecord(c, args[0], rec)
		return nil
	},
}

var getAsOfCmd = &cobra.Command{
	Use:   "getasof <key> <asOf>",
	Short: "Get the version of key valid at asOf",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		asOf, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid asOf timestamp %q: %w", args[1], err)
		}

		inst, err := openInstance()
		if err != nil {
			return err
		}
		defer inst.Close()

		rec, err := inst.GetAsOf([]byte(args[0]), asOf)
		if err != nil {
			return err
		}
		printRecord(c, args[0], rec)
		return nil
	},
}

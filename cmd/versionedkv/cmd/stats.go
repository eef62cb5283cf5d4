package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store configuration and the expired-record counter",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		inst, err := openInstance()
		if err != nil {
			return err
		}
		defer inst.Close()

		t := table.NewWriter()
		t.SetOutputMirror(c.OutOrStdout())
		t.AppendHeader(table.Row{"field", "value"})
		t.AppendRows([]table.Row{
			{"name", inst.Name()},
			{"isOpen", inst.IsOpen()},
			{"persistent", inst.Persistent()},
			{"historyRetention", historyRetention},
			{"segmentInterval", segmentInterval},
			{"expiredRecords", inst.ExpiredCount()},
		})
		t.Render()
		return nil
	},
}

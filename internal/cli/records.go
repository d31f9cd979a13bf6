package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smothiki/jupyterlauncher/internal/monitor"
)

var recordsJSON bool

func init() {
	recordsCmd.Flags().BoolVar(&recordsJSON, "json", false, "Output records as JSON")
	rootCmd.AddCommand(recordsCmd)
}

var recordsCmd = &cobra.Command{
	Use:   "records <log-file>",
	Short: "Parse an execution log and print its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := monitor.ReadRecords(args[0])
		if err != nil {
			return err
		}

		if recordsJSON {
			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal records: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%s  %-13s  kernel=%s  %s\n",
				rec.Timestamp.Format(time.RFC3339), rec.Type, rec.KernelID, summarize(rec))
		}
		fmt.Printf("%d records\n", len(records))
		return nil
	},
}

// summarize renders the type-specific payload of a record as one short field.
func summarize(rec monitor.Record) string {
	switch rec.Type {
	case monitor.RecordInput:
		return fmt.Sprintf("cell=%d code=%q", rec.CellNumber, rec.Code)
	case monitor.RecordStream:
		return fmt.Sprintf("%s=%q", rec.StreamName, rec.Content)
	case monitor.RecordOutput, monitor.RecordDisplay:
		return fmt.Sprintf("mime-types=%d", len(rec.Data))
	case monitor.RecordError:
		return fmt.Sprintf("%s: %s", rec.ErrorName, rec.ErrorValue)
	case monitor.RecordExecuteReply:
		return fmt.Sprintf("status=%s count=%d", rec.Status, rec.ExecutionCount)
	case monitor.RecordStdin:
		return fmt.Sprintf("prompt=%q", rec.Prompt)
	}
	return ""
}

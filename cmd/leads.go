package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect the lead store",
}

var leadsCompleteOnly bool

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored leads as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if leadsCompleteOnly {
			records = completeOnly(records)
		}
		if records == nil {
			records = []leadx.Record{}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "    ")
		return enc.Encode(records)
	},
}

func completeOnly(records []leadx.Record) []leadx.Record {
	out := records[:0:0]
	for _, rec := range records {
		if rec.IsComplete() {
			out = append(out, rec)
		}
	}
	return out
}

func init() {
	leadsListCmd.Flags().BoolVar(&leadsCompleteOnly, "complete", false, "only print leads with a name and use case")
	leadsCmd.AddCommand(leadsListCmd)
}

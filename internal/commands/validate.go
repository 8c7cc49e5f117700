package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"payperless/internal/core"
)

func newValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check every record of a receipt list",
		Long:  "Reads a JSON array of receipts (bare or in backend envelopes) and reports which records would be shown. Use - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRecords(cmd, args[0])
			if err != nil {
				return err
			}
			rejected := printValidation(cmd, core.Validate(raw))
			if strict && rejected > 0 {
				return fmt.Errorf("%d record(s) rejected", rejected)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero if any record is rejected")

	return cmd
}

func printValidation(cmd *cobra.Command, results []core.Result) int {
	out := cmd.OutOrStdout()
	rejected := 0
	for i, r := range results {
		if r.Valid() {
			fmt.Fprintf(out, "#%d valid %s %s\n", i, r.Receipt.StoreName, r.Receipt.Date)
			continue
		}
		rejected++
		if r.Rejected.Item >= 0 {
			fmt.Fprintf(out, "#%d rejected: %s (item %d)\n", i, r.Rejected.Reason, r.Rejected.Item)
		} else {
			fmt.Fprintf(out, "#%d rejected: %s\n", i, r.Rejected.Reason)
		}
	}
	fmt.Fprintf(out, "%d valid, %d rejected\n", len(results)-rejected, rejected)
	return rejected
}

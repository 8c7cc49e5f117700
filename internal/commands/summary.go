package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"payperless/internal/core"
)

func newSummaryCommand() *cobra.Command {
	var category string
	var currency string

	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Print spending by category, store and day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRecords(cmd, args[0])
			if err != nil {
				return err
			}
			receipts := core.ValidateReceipts(raw)

			d := core.Overview()
			if cmd.Flags().Changed("category") {
				d = d.Select(category)
			}
			out := cmd.OutOrStdout()
			printTable(out, d.Title(), d.Series(receipts), currency)
			printTable(out, "Spending by Store", core.ByStore(receipts), currency)
			printTable(out, "Spending by Day", core.ByDay(receipts), currency)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "show the item breakdown of one category")
	cmd.Flags().StringVar(&currency, "currency", core.DefaultCurrencySymbol, "currency symbol for amounts")

	return cmd
}

func printTable(out io.Writer, title string, rows []core.KeyTotal, currency string) {
	fmt.Fprintln(out, title)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if len(rows) == 0 {
		fmt.Fprintln(tw, "  (none)\t")
	}
	for _, kt := range rows {
		key := kt.Key
		if key == "" {
			key = core.UncategorizedLabel
		}
		fmt.Fprintf(tw, "  %s\t%s\t\n", key, core.FormatCurrency(kt.Total, currency))
	}
	_ = tw.Flush()
	fmt.Fprintln(out)
}

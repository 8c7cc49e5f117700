// Package commands implements the payperless CLI.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"payperless/internal/core"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "payperless",
		Short: "Validate and summarize receipt exports",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newSummaryCommand())

	return rootCmd
}

// readRecords decodes a receipt list from path, or stdin when path is "-".
func readRecords(cmd *cobra.Command, path string) ([]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	raw, err := core.DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return raw, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"findingaids/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "findingaids",
	Short: "Finding aids CLI - extract structured tables from scanned archival finding aids",
	Long: `Finding aids CLI converts scanned archival finding-aid PDFs into
structured tables using a vision-capable language model.

The PDF is split into page chunks, each chunk is sent to the model with an
extraction prompt, and the responses are parsed, cleaned and merged into a
single spreadsheet with hierarchy paths, inherited fields and normalized
dates.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

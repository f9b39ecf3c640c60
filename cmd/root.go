// Package cmd provides the tastetrail CLI commands.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Global flags shared by all commands.
var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tastetrail",
	Short: "TasteTrail backend - restaurant recommendations mined from food videos",
	Long: `tastetrail runs the TasteTrail backend services.

TasteTrail ingests food-influencer videos, acquires transcripts, extracts
restaurant recommendations with an LLM, and serves them over a REST API.

COMMON WORKFLOWS:
  Run the API:       tastetrail serve
  Apply migrations:  tastetrail migrate
  Ingest a channel:  tastetrail sync --channel UCabc123 --name "Mark Wiens"
  Process videos:    tastetrail process --batch --limit 5
  Geocode places:    tastetrail enrich --limit 25

Configuration is read from a YAML file (--config) with TT_* environment
variable overrides. Run 'tastetrail <command> --help' for details.`,
	SilenceUsage: true,
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tastetrail.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newEnrichCommand())
	rootCmd.AddCommand(newVersionCommand())
}

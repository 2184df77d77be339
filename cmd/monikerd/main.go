package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmoniker/openmoniker/cmd/monikerd/commands"
	"github.com/openmoniker/openmoniker/logger"
)

var rootCmd = &cobra.Command{
	Use:   "monikerd",
	Short: "monikerd - moniker resolution service",
	Long: `monikerd - catalog-backed moniker resolution service.

monikerd translates hierarchical data identifiers (monikers) into concrete
source-binding descriptors: source type, connection parameters, a rendered
query, inherited ownership, and an access policy decision.

Available commands:
  serve    - Start the resolution service
  catalog  - Validate declarative catalog files
  version  - Print build information

Examples:
  monikerd serve --config moniker.toml
  monikerd catalog validate catalog/market.yaml
  monikerd version`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		return logger.SetVerbosity(verbosity)
	},
}

var jsonLogs bool

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON structured logs")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.CatalogCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

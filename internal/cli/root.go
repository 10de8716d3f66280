package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles learnpathctl and its subcommands.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "learnpathctl",
		Short: "Manage the learnpath recommendation dataset",
		Long: `learnpathctl imports the CSV exports of the raw tables, runs the
recommendation pipeline offline and prints plans and cohort summaries.

Configuration is read from config.yaml (or LEARNPATH_CONFIG), .env and
LEARNPATH_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to the YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")

	root.AddCommand(
		NewMigrateCmd(),
		NewImportCmd(),
		NewPlanCmd(),
		NewClustersCmd(),
	)
	return root
}

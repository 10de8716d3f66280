package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgirmay/learnpath/pkg/ingest"
)

// NewImportCmd creates the 'import' command.
func NewImportCmd() *cobra.Command {
	var appendRecords bool

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import the CSV tables found in a directory",
		Long: `Import learning_resources_full.csv, question_table.csv, concept_table.csv,
student_table.csv and student_performance.csv from <dir>. Reference tables are
upserted by id. Performance records replace the stored ones unless --append
is given.`,
		Example: `  learnpathctl import ./data
  learnpathctl import ./data --append`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			summary, err := ingest.NewImporter(e.registry, e.logger).ImportDir(cmd.Context(), args[0], !appendRecords)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported from %s in %s:\n", args[0], summary.Duration.Round(time.Millisecond))
			fmt.Fprintf(out, "  concepts:     %d\n", summary.Concepts)
			fmt.Fprintf(out, "  questions:    %d\n", summary.Questions)
			fmt.Fprintf(out, "  students:     %d\n", summary.Students)
			fmt.Fprintf(out, "  resources:    %d\n", summary.Resources)
			fmt.Fprintf(out, "  performance:  %d\n", summary.Performance)
			for _, f := range summary.Skipped {
				fmt.Fprintf(out, "  skipped:      %s (not found)\n", f)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendRecords, "append", false, "Append performance records instead of replacing them")
	return cmd
}

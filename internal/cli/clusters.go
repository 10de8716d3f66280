package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jgirmay/learnpath/internal/app"
)

// NewClustersCmd creates the 'clusters' command.
func NewClustersCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Cluster students and print a summary of each cohort",
		Example: `  learnpathctl clusters
  learnpathctl clusters --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			system, err := app.Load(cmd.Context(), e.registry, e.cfg.Pipeline, e.logger)
			if err != nil {
				return err
			}

			stats := system.ClusterStats()
			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			if len(stats) == 0 {
				fmt.Fprintln(out, "No clusters: not enough students.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tNAME\tSIZE\tACCURACY\tAVG TIME\tATTEMPTS\tMASTERY")
			for _, s := range stats {
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.1f\t%.2f\t%.1f\n",
					s.ClusterLabel, s.ClusterName, s.Size, s.Accuracy, s.AvgTimeTaken, s.AvgAttempts, s.MasteryScore)
			}
			if score, ok := system.Silhouette(); ok {
				fmt.Fprintf(w, "\nsilhouette\t%.3f\n", score)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

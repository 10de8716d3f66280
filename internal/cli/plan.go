package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jgirmay/learnpath/internal/app"
)

// NewPlanCmd creates the 'plan' command.
func NewPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "plan <student_id>",
		Short:   "Print the personalized learning plan of a student as JSON",
		Example: `  learnpathctl plan S001`,
		Args:    cobra.ExactArgs(1),
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
			plan, err := system.Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
}

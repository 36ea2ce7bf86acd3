package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
)

// newReportCmd creates the report command
func newReportCmd(flags *rootFlags, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Poll submitted pull requests and render a campaign report",
		Long: `Poll submitted pull requests and render a campaign report.

Merged and closed PRs are recorded in the status store. The report prints
to the console and is written as markdown under reports/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			return actions.Report(cmd.Context(), rt)
		},
	}

	return cmd
}

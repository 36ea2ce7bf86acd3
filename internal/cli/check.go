package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
)

// newCheckCmd creates the check command
func newCheckCmd(flags *rootFlags, version string) *cobra.Command {
	var (
		tries   int
		revert  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Validate uncommitted changes file by file with a check script",
		Long: `Validate uncommitted changes file by file with a check script.

For each changed file the script runs twice: once with the change stashed
away and once with it restored, invoked as 'script <clone-dir> <file> <try>'.
A file whose change flips the script from passing to failing is flagged;
with --revert it is also discarded. Results are written to
initiatives/checks.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			return actions.Check(cmd.Context(), rt, actions.CheckOptions{
				Script:  args[0],
				Tries:   tries,
				Revert:  revert,
				Workers: workers,
			})
		},
	}

	cmd.Flags().IntVar(&tries, "tries", 1, "Script runs per side, to smoke out flaky checks")
	cmd.Flags().BoolVar(&revert, "revert", false, "Discard files whose change regressed the check")
	cmd.Flags().IntVar(&workers, "workers", actions.DefaultWorkers, "Concurrent repository workers")

	return cmd
}

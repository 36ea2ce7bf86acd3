package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
)

// newCommitCmd creates the commit command
func newCommitCmd(flags *rootFlags, version string) *cobra.Command {
	var (
		message string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit uncommitted changes in every clone on the initiative branch",
		Long: `Commit uncommitted changes in every clone on the initiative branch.

All changes are staged and committed with the shared message. Repository
pre-commit hooks run as usual; a hook rejection fails that repository
without blocking the rest of the fleet. Clean clones are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			return actions.Commit(cmd.Context(), rt, actions.CommitOptions{
				Message: message,
				Workers: workers,
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message shared by every repository (required)")
	cmd.Flags().IntVar(&workers, "workers", actions.DefaultWorkers, "Concurrent repository workers")
	cmd.MarkFlagRequired("message")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
	"lasso.dev/lasso/internal/config"
	"lasso.dev/lasso/internal/tui"
)

// newSyncCmd creates the sync command
func newSyncCmd(flags *rootFlags, version string) *cobra.Command {
	var (
		yes     bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fork, clone, and fast-forward every repository in the organization",
		Long: `Fork, clone, and fast-forward every repository in the organization.

Missing forks are created after a single consent prompt covering the whole
set; pass --yes to pre-approve. Existing clones on their default branch are
fast-forwarded from upstream and pushed back to the fork.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			opts := actions.SyncOptions{
				Yes:     yes,
				Workers: workers,
			}
			if config.Interactive() {
				opts.Confirm = tui.Confirm
			}
			return actions.Sync(cmd.Context(), rt, opts)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Approve fork creation without prompting")
	cmd.Flags().IntVar(&workers, "workers", actions.DefaultWorkers, "Concurrent repository workers")

	return cmd
}

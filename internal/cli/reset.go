package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
)

// newResetCmd creates the reset command
func newResetCmd(flags *rootFlags, version string) *cobra.Command {
	var (
		force   bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Return every clone to a pristine default branch",
		Long: `Return every clone to a pristine default branch.

Uncommitted changes and untracked files are discarded. Clones with commits
ahead of their default branch are left untouched unless --force is given,
since those commits may exist nowhere else.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			return actions.Reset(cmd.Context(), rt, actions.ResetOptions{
				Force:   force,
				Workers: workers,
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Discard commits that were never pushed")
	cmd.Flags().IntVar(&workers, "workers", actions.DefaultWorkers, "Concurrent repository workers")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
)

// newPRCmd creates the pr command
func newPRCmd(flags *rootFlags, version string) *cobra.Command {
	var (
		template string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Push the initiative branch and open a pull request per repository",
		Long: `Push the initiative branch and open a pull request per repository.

Only clones with commits ahead of their default branch submit; repositories
already submitted are skipped, so the pass is safe to re-run after partial
failures. The PR title and body come from the initiative's template under
initiatives/, with the first heading as the title.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			return actions.PR(cmd.Context(), rt, actions.PROptions{
				Template: template,
				Workers:  workers,
			})
		},
	}

	cmd.Flags().StringVar(&template, "template", "", "Override the PR template path")
	cmd.Flags().IntVar(&workers, "workers", actions.DefaultWorkers, "Concurrent repository workers")

	return cmd
}

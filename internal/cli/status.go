package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
)

// newStatusCmd creates the status command
func newStatusCmd(flags *rootFlags, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show each clone's branch, tree state, and commit position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			return actions.Status(cmd.Context(), rt)
		},
	}

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/actions"
)

// newBranchCmd creates the branch command
func newBranchCmd(flags *rootFlags, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch <name>",
		Short: "Start or resume an initiative branch across every clone",
		Long: `Start or resume an initiative branch across every clone.

The name is sanitized to letters, digits, and dashes. A PR template is
created under initiatives/ if one does not exist, and every repository gets
a status entry. Clones must all be on their default branch, or all already
on the initiative branch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, flags, version)
			if err != nil {
				return err
			}
			defer rt.Splog.Close()

			return actions.Branch(cmd.Context(), rt, args[0])
		},
	}

	return cmd
}

// Package cli wires the lasso verbs into a cobra command tree. Each verb
// resolves configuration, builds a runtime context, and delegates to the
// matching action.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"lasso.dev/lasso/internal/config"
	"lasso.dev/lasso/internal/runtime"
	"lasso.dev/lasso/internal/tui"
)

// rootFlags are shared by every verb
type rootFlags struct {
	org       string
	user      string
	token     string
	workspace string
	exclude   []string
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "lasso",
		Short: "Lasso herds bulk code changes across a fleet of GitHub repositories",
		Long: `Lasso herds bulk code changes across a fleet of GitHub repositories.

It forks and clones every repository in an organization, carries a named
initiative branch across the fleet, and submits the change as one pull
request per repository, tracking each PR from submission to merge.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.org, "org", "", "GitHub organization to target")
	pf.StringVar(&flags.user, "user", "", "GitHub username owning the forks")
	pf.StringVar(&flags.token, "token", "", "GitHub personal access token")
	pf.StringVar(&flags.workspace, "workspace", ".", "Workspace directory holding clones, initiatives, and reports")
	pf.StringSliceVar(&flags.exclude, "exclude-repo", nil, "Repository to exclude from all verbs (repeatable)")

	rootCmd.AddCommand(newSyncCmd(flags, version))
	rootCmd.AddCommand(newBranchCmd(flags, version))
	rootCmd.AddCommand(newCommitCmd(flags, version))
	rootCmd.AddCommand(newCheckCmd(flags, version))
	rootCmd.AddCommand(newPRCmd(flags, version))
	rootCmd.AddCommand(newResetCmd(flags, version))
	rootCmd.AddCommand(newStatusCmd(flags, version))
	rootCmd.AddCommand(newReportCmd(flags, version))

	return rootCmd
}

// newRuntime resolves configuration and builds the runtime context for one
// verb invocation. Missing configuration prompts interactively; in a
// non-interactive session it aborts before any work dispatches.
func newRuntime(cmd *cobra.Command, flags *rootFlags, version string) (*runtime.Context, error) {
	var prompter config.Prompter
	if config.Interactive() {
		prompter = tui.Prompter{}
	}

	cfg, err := config.Resolve(
		filepath.Join(flags.workspace, config.DefaultFileName),
		config.Flags{
			Org:          flags.org,
			User:         flags.user,
			Token:        flags.token,
			ExcludeRepos: flags.exclude,
		},
		prompter,
	)
	if err != nil {
		return nil, err
	}

	return runtime.New(cmd.Context(), cfg, flags.workspace, version)
}

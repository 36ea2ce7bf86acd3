package actions

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/runtime"
)

var (
	statusHeaderStyle = lipgloss.NewStyle().Bold(true)
	statusDirtyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusCleanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Status prints a read-only view of the fleet: each clone's branch, working
// tree cleanliness, and commit position relative to its default branch. It
// mutates nothing and talks to the API only for default-branch fallbacks.
func Status(ctx context.Context, rt *runtime.Context) error {
	clones, err := rt.Workspace.Clones()
	if err != nil {
		return err
	}
	if len(clones) == 0 {
		rt.Splog.Info("No local clones found")
		rt.Splog.Tip("Run `lasso sync` to clone the fleet first")
		return nil
	}

	resolver := newBranchResolver(rt)

	type row struct {
		name   string
		branch string
		dirty  bool
		ahead  int
		behind int
	}

	rows := make([]row, 0, len(clones))
	width := len("REPOSITORY")
	for _, clone := range clones {
		state, err := rt.Workspace.Inspect(clone.Name)
		if err != nil {
			return err
		}

		r := row{name: clone.Name, branch: state.CurrentBranch, dirty: state.Dirty}

		runner := git.NewRunner(clone.Path)
		defBranch, err := localDefaultBranch(ctx, runner, resolver, rt.Config.Org, clone.Name)
		if err != nil {
			return err
		}
		if r.branch != "" && r.branch != defBranch {
			r.ahead, r.behind, err = runner.AheadBehind(ctx, defBranch, r.branch)
			if err != nil {
				return err
			}
		}

		if len(r.name) > width {
			width = len(r.name)
		}
		rows = append(rows, r)
	}

	fmt.Println(statusHeaderStyle.Render(fmt.Sprintf("%-*s  %-24s %-6s %s", width, "REPOSITORY", "BRANCH", "TREE", "COMMITS")))
	for _, r := range rows {
		// clean and dirty render to equal visible width, so column
		// alignment survives the ANSI styling
		tree := statusCleanStyle.Render("clean")
		if r.dirty {
			tree = statusDirtyStyle.Render("dirty")
		}
		position := "-"
		if r.ahead > 0 || r.behind > 0 {
			position = fmt.Sprintf("+%d/-%d", r.ahead, r.behind)
		}
		branch := r.branch
		if branch == "" {
			branch = "(detached)"
		}
		fmt.Printf("%-*s  %-24s %s  %s\n", width, r.name, branch, tree, position)
	}
	return nil
}

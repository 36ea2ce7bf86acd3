package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lassoerrors "lasso.dev/lasso/internal/errors"
	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/runtime"
)

// Branch starts or resumes an initiative: every clone moves onto the
// initiative branch, a status entry is ensured per repository, and the PR
// template is created if absent.
//
// The fleet must be in a coherent starting state. Mixed current branches
// across clones mean a previous campaign was left half-done, and the fix
// (reset, or finish the other campaign) is the operator's call.
func Branch(ctx context.Context, rt *runtime.Context, name string) error {
	splog := rt.Splog

	initiativeName := initiative.SanitizeName(name)
	if initiativeName == "" {
		return fmt.Errorf("initiative name %q contains no usable characters", name)
	}
	if initiativeName != name {
		splog.Info("Using branch name %s", initiativeName)
	}

	clones, err := rt.Workspace.Clones()
	if err != nil {
		return err
	}
	if len(clones) == 0 {
		splog.Info("No local clones found")
		splog.Tip("Run `lasso sync` to clone the fleet first")
		return nil
	}

	resolver := newBranchResolver(rt)

	type cloneState struct {
		name    string
		current string
		dirty   bool
		isOnDef bool
		runner  *git.Runner
	}

	states := make([]cloneState, 0, len(clones))
	branches := make(map[string][]string)
	var dirty []string

	for _, clone := range clones {
		runner := git.NewRunner(clone.Path)

		current, err := runner.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		isDirty, err := runner.IsDirty(ctx)
		if err != nil {
			return err
		}
		defBranch, err := localDefaultBranch(ctx, runner, resolver, rt.Config.Org, clone.Name)
		if err != nil {
			return err
		}

		states = append(states, cloneState{
			name:    clone.Name,
			current: current,
			dirty:   isDirty,
			isOnDef: current == defBranch,
			runner:  runner,
		})
		branches[current] = append(branches[current], clone.Name)
		if isDirty {
			dirty = append(dirty, clone.Name)
		}
	}

	allOnDefault := true
	allOnTarget := true
	for _, state := range states {
		if !state.isOnDef {
			allOnDefault = false
		}
		if state.current != initiativeName {
			allOnTarget = false
		}
	}

	switch {
	case allOnTarget && len(dirty) == 0:
		splog.Info("All %d clones are already on %s", len(states), initiativeName)
	case allOnDefault:
		if len(dirty) > 0 {
			return fmt.Errorf("%w: %s have uncommitted changes", lassoerrors.ErrDirtyWorktree, strings.Join(dirty, ", "))
		}
	case allOnTarget:
		// Resuming mid-campaign with local edits in flight is normal
		splog.Warn("Resuming %s with uncommitted changes in %s", initiativeName, strings.Join(dirty, ", "))
	default:
		names := make([]string, 0, len(branches))
		for branch := range branches {
			names = append(names, branch)
		}
		sort.Strings(names)
		splog.Error("Clones are on mixed branches:")
		for _, branch := range names {
			splog.Info("  %s: %s", branch, strings.Join(branches[branch], ", "))
		}
		splog.Tip("Run `lasso reset` to return the fleet to its default branches")
		return lassoerrors.ErrMixedBranches
	}

	if err := initiative.EnsureTemplate(rt.Workspace.InitiativesDir(), initiativeName, rt.Version); err != nil {
		return err
	}

	created, resumed := 0, 0
	for _, state := range states {
		lock := rt.Workspace.Lock(state.name)
		lock.Lock()

		err := func() error {
			if state.current == initiativeName {
				resumed++
				return rt.Store.EnsureEntry(initiativeName, state.name)
			}

			exists, err := state.runner.HasBranch(ctx, initiativeName)
			if err != nil {
				return err
			}
			if exists {
				if err := state.runner.CheckoutBranch(ctx, initiativeName); err != nil {
					return err
				}
				resumed++
			} else {
				if err := state.runner.CreateAndCheckoutBranch(ctx, initiativeName); err != nil {
					return err
				}
				created++
			}
			return rt.Store.EnsureEntry(initiativeName, state.name)
		}()
		lock.Unlock()

		if err != nil {
			return fmt.Errorf("%s: %w", state.name, err)
		}
	}

	splog.Info("Initiative %s: %d branches created, %d resumed", initiativeName, created, resumed)
	splog.Tip("Edit %s to describe the change, then make your edits and run `lasso commit`",
		initiative.TemplatePath(rt.Workspace.InitiativesDir(), initiativeName))
	return nil
}

package actions

import (
	"context"
	"fmt"

	"lasso.dev/lasso/internal/engine"
	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/runtime"
)

// ResetOptions control a reset pass
type ResetOptions struct {
	// Force discards commits that were never pushed. Without it, clones
	// with commits ahead of their default branch are left untouched.
	Force bool

	Workers int
}

// Reset returns every clone to a pristine default branch: uncommitted
// changes and untracked files are discarded and the initiative branch is
// abandoned. Clones holding unpushed commits are protected unless forced.
func Reset(ctx context.Context, rt *runtime.Context, opts ResetOptions) error {
	clones, err := rt.Workspace.Clones()
	if err != nil {
		return err
	}
	if len(clones) == 0 {
		rt.Splog.Info("No local clones found")
		return nil
	}

	resolver := newBranchResolver(rt)

	tasks := make([]engine.Task, 0, len(clones))
	for _, clone := range clones {
		clone := clone
		tasks = append(tasks, engine.Task{
			Repo: clone.Name,
			Run: func(ctx context.Context) engine.Result {
				return resetClone(ctx, rt, resolver, clone.Name, clone.Path, opts.Force)
			},
		})
	}

	pool := engine.NewPool(workersOrDefault(opts.Workers), rt.Limiter)
	summary := engine.Summary{Outcomes: pool.Run(ctx, tasks)}
	summary.Print(rt.Splog)

	for _, o := range summary.Outcomes {
		if o.Status == engine.StatusSkipped && o.Detail != "" {
			rt.Splog.Warn("%s: %s", o.Repo, o.Detail)
		}
	}
	return summary.Err()
}

func resetClone(ctx context.Context, rt *runtime.Context, resolver *branchResolver, name, path string, force bool) engine.Result {
	lock := rt.Workspace.Lock(name)
	lock.Lock()
	defer lock.Unlock()

	runner := git.NewRunner(path)

	current, err := runner.CurrentBranch(ctx)
	if err != nil {
		return engine.Result{Err: err}
	}
	defBranch, err := localDefaultBranch(ctx, runner, resolver, rt.Config.Org, name)
	if err != nil {
		return engine.Result{Err: err}
	}

	if current != defBranch && current != "" && !force {
		ahead, err := runner.CommitsAhead(ctx, defBranch, current)
		if err != nil {
			return engine.Result{Err: err}
		}
		if ahead > 0 {
			return engine.Result{
				Status: engine.StatusSkipped,
				Detail: fmt.Sprintf("%d commit(s) on %s would be lost (re-run with --force)", ahead, current),
			}
		}
	}

	// Discard first so a dirty tree cannot block the checkout
	if err := runner.HardReset(ctx); err != nil {
		return engine.Result{Err: err}
	}
	if current != defBranch {
		if err := runner.CheckoutBranch(ctx, defBranch); err != nil {
			return engine.Result{Err: err}
		}
		if err := runner.HardReset(ctx); err != nil {
			return engine.Result{Err: err}
		}
	}
	if err := runner.Clean(ctx); err != nil {
		return engine.Result{Err: err}
	}

	return engine.Result{Status: engine.StatusUpToDate, Detail: "reset to " + defBranch}
}

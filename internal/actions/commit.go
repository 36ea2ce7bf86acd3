package actions

import (
	"context"
	"fmt"

	"lasso.dev/lasso/internal/engine"
	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/runtime"
)

// CommitOptions control a commit pass
type CommitOptions struct {
	Message string
	Workers int
}

// Commit records the operator's edits across the fleet: every dirty clone
// on an initiative branch gets a commit with the shared message, and its
// status entry advances to ready-to-submit. Clean clones and clones still
// on their default branch are skipped, never failed.
func Commit(ctx context.Context, rt *runtime.Context, opts CommitOptions) error {
	if opts.Message == "" {
		return fmt.Errorf("a commit message is required")
	}

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
				return commitClone(ctx, rt, resolver, clone.Name, clone.Path, opts.Message)
			},
		})
	}

	pool := engine.NewPool(workersOrDefault(opts.Workers), rt.Limiter)
	summary := engine.Summary{Outcomes: pool.Run(ctx, tasks)}
	summary.Print(rt.Splog)
	return summary.Err()
}

func commitClone(ctx context.Context, rt *runtime.Context, resolver *branchResolver, name, path, message string) engine.Result {
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
	if current == defBranch || current == "" {
		return engine.Result{Status: engine.StatusSkipped, Detail: "not on an initiative branch"}
	}

	dirty, err := runner.IsDirty(ctx)
	if err != nil {
		return engine.Result{Err: err}
	}
	if !dirty {
		// Nothing staged or modified; the status entry keeps whatever
		// state a previous commit left it in
		return engine.Result{Status: engine.StatusSkipped, Detail: "no changes"}
	}

	if err := runner.StageAll(ctx); err != nil {
		return engine.Result{Err: err}
	}
	// Hooks run here; a hook rejection surfaces as a failed commit with
	// the hook's output attached
	if err := runner.Commit(ctx, message); err != nil {
		return engine.Result{Err: err}
	}

	entry, _ := rt.Store.Get(current, name)
	entry.Initiative = current
	entry.Repo = name
	entry.State = initiative.StateReady
	entry.Detail = ""
	if err := rt.Store.Upsert(entry); err != nil {
		return engine.Result{Err: err}
	}

	return engine.Result{Status: engine.StatusCommitted}
}

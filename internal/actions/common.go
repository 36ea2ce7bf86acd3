// Package actions implements the lasso verbs. Each verb is a pass over the
// entire local fleet; per-repository failures are recorded and surfaced in
// an end-of-run summary without aborting sibling repositories.
package actions

import (
	"context"
	"strings"
	"sync"

	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/github"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/runtime"
)

// DefaultWorkers is the worker pool size for fleet-wide verbs
const DefaultWorkers = 8

// workersOrDefault floors the requested pool size
func workersOrDefault(workers int) int {
	if workers < 1 {
		return DefaultWorkers
	}
	return workers
}

// branchResolver caches default-branch lookups for one verb pass so the
// fleet does not re-query the API per repository more than once
type branchResolver struct {
	rt *runtime.Context

	mu    sync.Mutex
	cache map[string]string
}

func newBranchResolver(rt *runtime.Context) *branchResolver {
	return &branchResolver{rt: rt, cache: make(map[string]string)}
}

// defaultBranch resolves a repository's default branch from the remote API
func (r *branchResolver) defaultBranch(ctx context.Context, owner, name string) (string, error) {
	key := owner + "/" + name

	r.mu.Lock()
	branch, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return branch, nil
	}

	var repo *github.Repo
	err := r.rt.Limiter.Do(ctx, "get repo "+key, func() error {
		var err error
		repo, err = r.rt.GitHub.GetRepo(ctx, owner, name)
		return err
	})
	if err != nil {
		return "", err
	}

	branch = repo.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	r.mu.Lock()
	r.cache[key] = branch
	r.mu.Unlock()
	return branch, nil
}

// recordObservedChanges advances a not-started entry to changed-uncommitted
// once uncommitted work is observed on its initiative branch. Branches with
// no entry are not lasso initiatives and stay unrecorded; entries past
// not-started are never moved backwards.
func recordObservedChanges(rt *runtime.Context, branch, repo string) {
	entry, ok := rt.Store.Get(branch, repo)
	if !ok || entry.State != initiative.StateNotStarted {
		return
	}
	entry.State = initiative.StateChanged
	if err := rt.Store.Upsert(entry); err != nil {
		rt.Splog.Debug("%s: recording uncommitted changes: %v", repo, err)
	}
}

// localDefaultBranch reads the default branch a clone's origin advertises,
// falling back to the remote API when origin/HEAD is not recorded
func localDefaultBranch(ctx context.Context, runner *git.Runner, resolver *branchResolver, owner, name string) (string, error) {
	out, err := runner.Run(ctx, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err == nil && out != "" {
		return strings.TrimPrefix(out, "origin/"), nil
	}
	return resolver.defaultBranch(ctx, owner, name)
}

package actions

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lasso.dev/lasso/internal/engine"
	lassoerrors "lasso.dev/lasso/internal/errors"
	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/github"
	"lasso.dev/lasso/internal/runtime"
)

// DefaultCloneDepth keeps fleet clones shallow; history beyond the tip is
// never needed for campaign changes
const DefaultCloneDepth = 1

// SyncOptions control a sync pass
type SyncOptions struct {
	// Yes pre-grants consent for creating missing forks
	Yes bool

	// Workers sizes the fleet worker pool
	Workers int

	// Confirm resolves the fork consent prompt. The sync engine itself
	// never reads the terminal; the CLI supplies this collaborator.
	Confirm func(prompt string) (bool, error)
}

// ForksNeedingConsent returns the upstream repositories that cannot be
// synced until the operator approves creating a fork. With consent
// pre-granted nothing needs approval.
func ForksNeedingConsent(missing []string, preGranted bool) []string {
	if preGranted {
		return nil
	}
	return missing
}

// Sync brings the local fleet in line with the organization: ensure a fork
// and a shallow clone of every upstream repository, then fast-forward each
// clone's default branch from upstream and push it back to the fork.
func Sync(ctx context.Context, rt *runtime.Context, opts SyncOptions) error {
	splog := rt.Splog
	cfg := rt.Config

	// A token for the wrong account would fork into the wrong place
	var login string
	err := rt.Limiter.Do(ctx, "authenticated user", func() error {
		var err error
		login, err = rt.GitHub.AuthenticatedUser(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}
	if login != "" && login != cfg.User {
		splog.Warn("token belongs to %s but the configured user is %s", login, cfg.User)
	}

	var upstreams []github.Repo
	err = rt.Limiter.Do(ctx, "list org repos", func() error {
		var err error
		upstreams, err = rt.GitHub.ListOrgRepos(ctx, cfg.Org)
		return err
	})
	if err != nil {
		return fmt.Errorf("listing %s repositories: %w", cfg.Org, err)
	}

	fleet := make([]github.Repo, 0, len(upstreams))
	for _, repo := range upstreams {
		if repo.Archived || repo.Private {
			splog.Debug("skipping %s: archived or private", repo.Name)
			continue
		}
		if cfg.Excluded(repo.Name) {
			splog.Debug("skipping %s: excluded", repo.Name)
			continue
		}
		fleet = append(fleet, repo)
	}
	if len(fleet) == 0 {
		splog.Info("No repositories to sync in %s", cfg.Org)
		return nil
	}

	var forks []github.Repo
	err = rt.Limiter.Do(ctx, "list user forks", func() error {
		var err error
		forks, err = rt.GitHub.ListUserForks(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("listing forks: %w", err)
	}

	// Fork listings do not carry parent linkage, so forks are matched to
	// upstream repositories by name
	forkByName := make(map[string]github.Repo, len(forks))
	for _, fork := range forks {
		forkByName[fork.Name] = fork
	}

	var missing []string
	for _, repo := range fleet {
		if _, ok := forkByName[repo.Name]; !ok {
			missing = append(missing, repo.Name)
		}
	}

	// One consent prompt covers the whole missing set for this run.
	// Declining is not a failure: the affected repositories report
	// consent-required and the rest of the fleet syncs normally.
	consented := opts.Yes
	needing := ForksNeedingConsent(missing, opts.Yes)
	if len(needing) > 0 && opts.Confirm != nil {
		prompt := fmt.Sprintf("Create %d fork(s) in your account? (%s)", len(needing), strings.Join(needing, ", "))
		approved, err := opts.Confirm(prompt)
		if err != nil {
			return err
		}
		consented = approved
	}

	splog.Info("Syncing %d repositories from %s", len(fleet), cfg.Org)

	resolver := newBranchResolver(rt)
	tasks := make([]engine.Task, 0, len(fleet))
	for _, repo := range fleet {
		repo := repo
		fork, hasFork := forkByName[repo.Name]
		tasks = append(tasks, engine.Task{
			Repo: repo.Name,
			Run: func(ctx context.Context) engine.Result {
				return syncRepo(ctx, rt, resolver, repo, fork, hasFork, consented)
			},
		})
	}

	pool := engine.NewPool(workersOrDefault(opts.Workers), rt.Limiter)
	summary := engine.Summary{Outcomes: pool.Run(ctx, tasks)}
	summary.Print(splog)
	return summary.Err()
}

func syncRepo(ctx context.Context, rt *runtime.Context, resolver *branchResolver, upstream, fork github.Repo, hasFork, consented bool) engine.Result {
	lock := rt.Workspace.Lock(upstream.Name)
	lock.Lock()
	defer lock.Unlock()

	forked := false
	if !hasFork {
		if !consented {
			return engine.Result{Status: engine.StatusConsentRequired, Detail: "fork creation not approved"}
		}
		created, err := createFork(ctx, rt, upstream)
		if err != nil {
			return engine.Result{Err: fmt.Errorf("%w: %v", lassoerrors.ErrForkFailed, err)}
		}
		fork = *created
		forked = true
	}

	if !rt.Workspace.HasClone(upstream.Name) {
		if err := cloneRepo(ctx, rt, upstream, fork); err != nil {
			return engine.Result{Err: err}
		}
		if forked {
			return engine.Result{Status: engine.StatusForked, Detail: "forked and cloned"}
		}
		return engine.Result{Status: engine.StatusCloned}
	}

	return refreshClone(ctx, rt, resolver, upstream)
}

// createFork requests a fork and trusts the accepted response; GitHub
// creates forks asynchronously and the clone URL is deterministic
func createFork(ctx context.Context, rt *runtime.Context, upstream github.Repo) (*github.Repo, error) {
	var fork *github.Repo
	err := rt.Limiter.Do(ctx, "fork "+upstream.FullName, func() error {
		var err error
		fork, err = rt.GitHub.CreateFork(ctx, upstream.Owner, upstream.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fork, nil
}

// authenticatedURL embeds the API token in an HTTPS remote URL so clone,
// fetch, and push work without an ambient credential helper. Other
// transports pass through unchanged.
func authenticatedURL(url, token string) string {
	if token == "" || !strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://x-access-token:" + token + "@" + strings.TrimPrefix(url, "https://")
}

func cloneRepo(ctx context.Context, rt *runtime.Context, upstream, fork github.Repo) error {
	url := fork.CloneURL
	if url == "" {
		url = fork.SSHURL
	}
	url = authenticatedURL(url, rt.Config.Token)
	path := rt.Workspace.ClonePath(upstream.Name)

	rt.Splog.Debug("cloning %s into %s", url, path)
	if err := git.Clone(ctx, url, path, DefaultCloneDepth); err != nil {
		// A failed clone must not leave a half-initialized directory that
		// later passes the clone-existence check
		os.RemoveAll(path)
		return err
	}

	runner := git.NewRunner(path)
	upstreamURL := upstream.CloneURL
	if upstreamURL == "" {
		upstreamURL = upstream.SSHURL
	}
	if err := runner.AddRemote(ctx, "upstream", authenticatedURL(upstreamURL, rt.Config.Token)); err != nil {
		return err
	}

	installPreCommitHooks(ctx, rt, upstream.Name, path)
	return nil
}

// refreshClone updates an existing clone: fetch only the fork's default
// branch, check it out, fast-forward from upstream, and push the result
// back to the fork. Dirty clones are skipped so a mid-campaign edit is
// never clobbered.
func refreshClone(ctx context.Context, rt *runtime.Context, resolver *branchResolver, upstream github.Repo) engine.Result {
	path := rt.Workspace.ClonePath(upstream.Name)
	runner := git.NewRunner(path)

	// The fork's default branch comes from the remote, never assumed
	defaultBranch, err := resolver.defaultBranch(ctx, rt.Config.User, upstream.Name)
	if err != nil {
		return engine.Result{Err: err}
	}

	// Single-branch fetch avoids conflicts from case-colliding or
	// divergent branch names across filesystems
	if err := runner.FetchBranch(ctx, "origin", defaultBranch); err != nil {
		return engine.Result{Err: err}
	}

	dirty, err := runner.IsDirty(ctx)
	if err != nil {
		return engine.Result{Err: err}
	}
	if dirty {
		return engine.Result{Status: engine.StatusSkipped, Detail: "uncommitted changes"}
	}

	current, err := runner.CurrentBranch(ctx)
	if err != nil {
		return engine.Result{Err: err}
	}
	if current != defaultBranch {
		if err := runner.CheckoutBranch(ctx, defaultBranch); err != nil {
			return engine.Result{Err: err}
		}
	}

	hasUpstream, err := runner.HasRemote(ctx, "upstream")
	if err != nil {
		return engine.Result{Err: err}
	}
	if !hasUpstream {
		url := upstream.CloneURL
		if url == "" {
			url = upstream.SSHURL
		}
		if err := runner.AddRemote(ctx, "upstream", authenticatedURL(url, rt.Config.Token)); err != nil {
			return engine.Result{Err: err}
		}
	}

	before, err := runner.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return engine.Result{Err: err}
	}

	if err := runner.PullFastForward(ctx, "upstream", defaultBranch); err != nil {
		return engine.Result{Err: err}
	}

	after, err := runner.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return engine.Result{Err: err}
	}
	if after == before {
		return engine.Result{Status: engine.StatusUpToDate}
	}

	if err := runner.Push(ctx, "origin", defaultBranch); err != nil {
		return engine.Result{Err: err}
	}
	return engine.Result{Status: engine.StatusFetched, Detail: "fast-forwarded from upstream"}
}

// installPreCommitHooks installs pre-commit hooks when the repository ships
// a pre-commit config, so lasso commits run the same checks contributors do.
// A missing pre-commit binary is tolerated.
func installPreCommitHooks(ctx context.Context, rt *runtime.Context, name, path string) {
	if _, err := os.Stat(filepath.Join(path, ".pre-commit-config.yaml")); err != nil {
		return
	}

	cmd := exec.CommandContext(ctx, "pre-commit", "install")
	cmd.Dir = path
	if err := cmd.Run(); err != nil {
		rt.Splog.Debug("%s: pre-commit install failed: %v", name, err)
	}
}

package actions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"lasso.dev/lasso/internal/engine"
	lassoerrors "lasso.dev/lasso/internal/errors"
	"lasso.dev/lasso/internal/git"
	"lasso.dev/lasso/internal/github"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/runtime"
)

// PROptions control a submission pass
type PROptions struct {
	// Template overrides the initiative's PR template path
	Template string

	Workers int
}

// PR submits the initiative across the fleet: for every clone with commits
// ahead of its default branch, push the initiative branch to the fork and
// open a pull request against upstream. Already-submitted repositories are
// skipped, so the pass is safe to re-run after partial failures.
func PR(ctx context.Context, rt *runtime.Context, opts PROptions) error {
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
				return submitClone(ctx, rt, resolver, clone.Name, clone.Path, opts.Template)
			},
		})
	}

	pool := engine.NewPool(workersOrDefault(opts.Workers), rt.Limiter)
	summary := engine.Summary{Outcomes: pool.Run(ctx, tasks)}
	summary.Print(rt.Splog)
	return summary.Err()
}

func submitClone(ctx context.Context, rt *runtime.Context, resolver *branchResolver, name, path, templateOverride string) engine.Result {
	lock := rt.Workspace.Lock(name)
	lock.Lock()
	defer lock.Unlock()

	runner := git.NewRunner(path)

	branch, err := runner.CurrentBranch(ctx)
	if err != nil {
		return engine.Result{Err: err}
	}
	defBranch, err := localDefaultBranch(ctx, runner, resolver, rt.Config.Org, name)
	if err != nil {
		return engine.Result{Err: err}
	}
	if branch == defBranch || branch == "" {
		return engine.Result{Status: engine.StatusSkipped, Detail: "not on an initiative branch"}
	}

	if entry, ok := rt.Store.Get(branch, name); ok {
		switch entry.State {
		case initiative.StateSubmitted, initiative.StateMerged, initiative.StateClosed:
			return engine.Result{Status: engine.StatusSkipped, Detail: fmt.Sprintf("already %s: %s", entry.State, entry.PRURL)}
		}
	}

	// The no-commits gate runs before any remote traffic so repositories
	// untouched by the initiative cost nothing
	ahead, err := runner.CommitsAhead(ctx, defBranch, branch)
	if err != nil {
		return engine.Result{Err: err}
	}
	if ahead == 0 {
		return engine.Result{Status: engine.StatusSkipped, Detail: "no commits on " + branch}
	}

	title, body, err := loadPRTemplate(rt, branch, templateOverride)
	if err != nil {
		return engine.Result{Err: err}
	}

	if err := runner.Push(ctx, "origin", branch); err != nil {
		return engine.Result{Err: err}
	}

	// The upstream default branch is the PR base; the clone's origin/HEAD
	// tracks the fork, which may lag a renamed upstream default
	base, err := resolver.defaultBranch(ctx, rt.Config.Org, name)
	if err != nil {
		return engine.Result{Err: err}
	}

	var pr *github.PullRequest
	err = rt.Limiter.Do(ctx, "create pull request "+name, func() error {
		var err error
		pr, err = rt.GitHub.CreatePullRequest(ctx, rt.Config.Org, name, github.CreatePROptions{
			Title: title,
			Body:  body,
			Head:  rt.Config.User + ":" + branch,
			Base:  base,
		})
		return err
	})
	if err != nil {
		// 422 usually means a PR for this head already exists; adopt it
		// instead of failing
		var remoteErr *lassoerrors.RemoteError
		if errors.As(err, &remoteErr) && remoteErr.Status == http.StatusUnprocessableEntity {
			if existing := findExistingPR(ctx, rt, name, branch); existing != nil {
				if err := recordSubmitted(rt, branch, name, existing.HTMLURL); err != nil {
					return engine.Result{Err: err}
				}
				return engine.Result{Status: engine.StatusSkipped, Detail: "already open: " + existing.HTMLURL}
			}
		}
		recordError(rt, branch, name, err)
		return engine.Result{Err: err}
	}

	if err := recordSubmitted(rt, branch, name, pr.HTMLURL); err != nil {
		return engine.Result{Err: err}
	}
	return engine.Result{Status: engine.StatusSubmitted, Detail: pr.HTMLURL}
}

// loadPRTemplate resolves the PR title and body from the initiative's
// template, falling back to the branch name when the template is absent
func loadPRTemplate(rt *runtime.Context, branch, override string) (title, body string, err error) {
	path := override
	if path == "" {
		path = initiative.TemplatePath(rt.Workspace.InitiativesDir(), branch)
	}

	title, body, err = initiative.LoadTemplate(path)
	if err != nil {
		if override == "" && os.IsNotExist(err) {
			title, body = branch, ""
		} else {
			return "", "", err
		}
	}
	if title == "" {
		title = branch
	}

	// Generated templates already end with the attribution line; only
	// hand-written templates need it appended
	attribution := initiative.Attribution(rt.Version)
	switch {
	case body == "":
		body = attribution
	case !strings.Contains(body, "Submitted with [Lasso]"):
		body = body + "\n\n" + attribution
	}
	return title, body, nil
}

func findExistingPR(ctx context.Context, rt *runtime.Context, name, branch string) *github.PullRequest {
	var prs []github.PullRequest
	err := rt.Limiter.Do(ctx, "list pull requests "+name, func() error {
		var err error
		prs, err = rt.GitHub.ListPullRequests(ctx, rt.Config.Org, name, rt.Config.User, branch)
		return err
	})
	if err != nil || len(prs) == 0 {
		return nil
	}
	return &prs[0]
}

func recordSubmitted(rt *runtime.Context, branch, name, url string) error {
	return rt.Store.Upsert(initiative.Entry{
		Initiative: branch,
		Repo:       name,
		State:      initiative.StateSubmitted,
		PRURL:      url,
	})
}

// recordError keeps the provider's message verbatim so the operator can
// diagnose per-repository submission failures from the status file
func recordError(rt *runtime.Context, branch, name string, cause error) {
	entry := initiative.Entry{
		Initiative: branch,
		Repo:       name,
		State:      initiative.StateError,
		Detail:     cause.Error(),
	}
	if err := rt.Store.Upsert(entry); err != nil {
		rt.Splog.Debug("%s: recording submission error: %v", name, err)
	}
}

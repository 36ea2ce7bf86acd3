// Package runtime provides a context type that bundles the configured
// components for use by every verb.
package runtime

import (
	"context"
	"path/filepath"

	"lasso.dev/lasso/internal/config"
	"lasso.dev/lasso/internal/github"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/output"
	"lasso.dev/lasso/internal/workspace"
)

// Context provides access to the configured components for verbs
type Context struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Splog     *output.Splog
	GitHub    github.Client
	Limiter   *github.Limiter
	Store     *initiative.Store
	Version   string
}

// New wires up a Context for a workspace root. The status store is opened
// eagerly: an unreadable store aborts the run before any work dispatches.
func New(ctx context.Context, cfg *config.Config, root, version string) (*Context, error) {
	ws := workspace.New(root, cfg.Org)
	if err := ws.EnsureLayout(); err != nil {
		return nil, err
	}

	store, err := initiative.Open(filepath.Join(ws.InitiativesDir(), cfg.Org+"-status.json"))
	if err != nil {
		return nil, err
	}

	splog, err := output.NewSplogWithConfig(output.GetLogFilePath())
	if err != nil {
		splog = output.NewSplog()
	}

	return &Context{
		Config:    cfg,
		Workspace: ws,
		Splog:     splog,
		GitHub:    github.NewRealClient(ctx, cfg.Token),
		Limiter:   github.NewLimiter(),
		Store:     store,
		Version:   version,
	}, nil
}

package git

import (
	"context"
)

// AddRemote registers a named remote on the clone
func (r *Runner) AddRemote(ctx context.Context, name, url string) error {
	_, err := r.Run(ctx, "remote", "add", name, url)
	return err
}

// HasRemote reports whether a remote with the given name is configured
func (r *Runner) HasRemote(ctx context.Context, name string) (bool, error) {
	remotes, err := r.RunLines(ctx, "remote")
	if err != nil {
		return false, err
	}
	for _, remote := range remotes {
		if remote == name {
			return true, nil
		}
	}
	return false, nil
}

// FetchBranch fetches a single branch from the given remote. Fetching only
// the default branch avoids conflicts from divergent or case-colliding
// branch names across filesystems.
func (r *Runner) FetchBranch(ctx context.Context, remote, branch string) error {
	_, err := r.Run(ctx, "fetch", remote, branch)
	return err
}

// PullFastForward fast-forwards the current branch from the given remote branch
func (r *Runner) PullFastForward(ctx context.Context, remote, branch string) error {
	_, err := r.Run(ctx, "pull", "--ff-only", remote, branch)
	return err
}

// Push pushes a branch to the given remote
func (r *Runner) Push(ctx context.Context, remote, branch string) error {
	_, err := r.Run(ctx, "push", remote, branch)
	return err
}

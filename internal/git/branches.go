package git

import (
	"context"
	"strconv"
	"strings"
)

// CurrentBranch returns the branch HEAD is on, or an empty string when detached
func (r *Runner) CurrentBranch(ctx context.Context) (string, error) {
	return r.Run(ctx, "branch", "--show-current")
}

// LocalBranches returns the names of all local branches
func (r *Runner) LocalBranches(ctx context.Context) ([]string, error) {
	lines, err := r.RunLines(ctx, "branch", "--format", "%(refname:short)")
	if err != nil {
		return nil, err
	}
	branches := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// HasBranch reports whether a local branch with the given name exists
func (r *Runner) HasBranch(ctx context.Context, name string) (bool, error) {
	branches, err := r.LocalBranches(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == name {
			return true, nil
		}
	}
	return false, nil
}

// CheckoutBranch checks out an existing branch
func (r *Runner) CheckoutBranch(ctx context.Context, name string) error {
	_, err := r.Run(ctx, "checkout", name)
	return err
}

// CreateAndCheckoutBranch creates a new branch from HEAD and checks it out
func (r *Runner) CreateAndCheckoutBranch(ctx context.Context, name string) error {
	_, err := r.Run(ctx, "checkout", "-b", name)
	return err
}

// AheadBehind returns how many commits head is ahead of and behind base
func (r *Runner) AheadBehind(ctx context.Context, base, head string) (ahead, behind int, err error) {
	out, err := r.Run(ctx, "rev-list", "--left-right", "--count", base+"..."+head)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, nil
	}
	behind, _ = strconv.Atoi(fields[0])
	ahead, _ = strconv.Atoi(fields[1])
	return ahead, behind, nil
}

// CommitsAhead returns the number of commits on head that are not on base
func (r *Runner) CommitsAhead(ctx context.Context, base, head string) (int, error) {
	out, err := r.Run(ctx, "rev-list", "--count", base+".."+head)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(out)
}

package git

import (
	"context"
	"strings"
)

// IsDirty reports whether the working tree has uncommitted changes,
// including untracked files
func (r *Runner) IsDirty(ctx context.Context) (bool, error) {
	out, err := r.Run(ctx, "status", "--short", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// ChangedFiles returns the paths of all modified, added, deleted, and
// untracked files relative to the clone root
func (r *Runner) ChangedFiles(ctx context.Context) ([]string, error) {
	lines, err := r.RunLines(ctx, "status", "--short", "--porcelain")
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		// Porcelain format: XY <path>. Output trimming can eat the first
		// line's leading status column, so cut at the code/path boundary
		// instead of indexing into the line.
		_, path, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		path = strings.TrimSpace(path)
		// Renames show "old -> new"
		if idx := strings.Index(path, " -> "); idx != -1 {
			path = path[idx+4:]
		}
		if path == "" {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// StageAll stages all additions, modifications, and deletions
func (r *Runner) StageAll(ctx context.Context) error {
	_, err := r.Run(ctx, "add", "--all")
	return err
}

// Commit creates a commit with the given message. Repository-local hooks
// run as part of the commit; their failure surfaces as a GitCommandError.
func (r *Runner) Commit(ctx context.Context, message string) error {
	_, err := r.Run(ctx, "commit", "--message", message)
	return err
}

// CheckoutPaths discards working-tree changes to the given paths
func (r *Runner) CheckoutPaths(ctx context.Context, paths ...string) error {
	args := append([]string{"checkout", "--"}, paths...)
	_, err := r.Run(ctx, args...)
	return err
}

// StashPush stashes working-tree changes, including untracked files
func (r *Runner) StashPush(ctx context.Context) error {
	_, err := r.Run(ctx, "stash", "push", "--include-untracked")
	return err
}

// StashPop reapplies the most recent stash
func (r *Runner) StashPop(ctx context.Context) error {
	_, err := r.Run(ctx, "stash", "pop")
	return err
}

// HardReset discards all staged and unstaged changes
func (r *Runner) HardReset(ctx context.Context) error {
	_, err := r.Run(ctx, "reset", "--hard")
	return err
}

// Clean removes untracked and ignored files and directories
func (r *Runner) Clean(ctx context.Context) error {
	_, err := r.Run(ctx, "clean", "-xdf")
	return err
}

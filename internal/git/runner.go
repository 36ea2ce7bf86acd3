// Package git provides a wrapper around git commands for per-clone repository operations.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	lassoerrors "lasso.dev/lasso/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// Runner executes git commands against a single working copy.
// Every verb holds the clone's workspace lock while using its Runner,
// so a clone is never mutated by two workers concurrently.
type Runner struct {
	workingDir string
}

// NewRunner creates a Runner bound to the given clone directory
func NewRunner(workingDir string) *Runner {
	return &Runner{workingDir: workingDir}
}

// WorkingDir returns the clone directory this runner operates on
func (r *Runner) WorkingDir() string {
	return r.workingDir
}

// Run executes a git command with the given context and returns the trimmed output
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, nil, args...)
}

// RunWithEnv executes a git command with additional environment variables
func (r *Runner) RunWithEnv(ctx context.Context, env []string, args ...string) (string, error) {
	return r.runInternal(ctx, env, args...)
}

func (r *Runner) runInternal(ctx context.Context, env []string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", lassoerrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", lassoerrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunLines executes a git command and returns output as lines
func (r *Runner) RunLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// Clone clones a repository into dir. A depth of 0 means a full clone.
func Clone(ctx context.Context, url, dir string, depth int) error {
	args := []string{"clone"}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}
	args = append(args, url, dir)

	runner := &Runner{}
	_, err := runner.Run(ctx, args...)
	return err
}

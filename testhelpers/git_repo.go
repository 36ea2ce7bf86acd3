// Package testhelpers provides shared test fixtures: throwaway git
// repositories and an in-memory GitHub client.
package testhelpers

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// GitRepo is a throwaway git repository for tests
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a repository with a main branch and a test identity
func NewGitRepo(t *testing.T, dir string) *GitRepo {
	t.Helper()

	repo := &GitRepo{Dir: dir}
	require.NoError(t, os.MkdirAll(dir, 0750))

	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "init", "-b", "main", dir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	require.NoError(t, cmd.Run(), "git init failed")

	repo.Git(t, "config", "user.name", "Test User")
	repo.Git(t, "config", "user.email", "test@example.com")
	repo.Git(t, "config", "commit.gpgsign", "false")
	return repo
}

// NewClonePair creates an upstream repository with one commit and a local
// clone of it, mimicking the repos/<org>/<name> layout a sync produces
func NewClonePair(t *testing.T, root, name string) (upstream, clone *GitRepo) {
	t.Helper()

	upstream = NewGitRepo(t, filepath.Join(root, "upstream", name))
	upstream.WriteFile(t, "README.md", "# "+name+"\n")
	upstream.Commit(t, "initial commit")

	cloneDir := filepath.Join(root, "repos", "testorg", name)
	cmd := exec.Command("git", "clone", upstream.Dir, cloneDir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	require.NoError(t, cmd.Run(), "git clone failed")

	clone = &GitRepo{Dir: cloneDir}
	clone.Git(t, "config", "user.name", "Test User")
	clone.Git(t, "config", "user.email", "test@example.com")
	clone.Git(t, "config", "commit.gpgsign", "false")
	return upstream, clone
}

// NewBareClone creates a bare clone of src, usable as a push target
func NewBareClone(t *testing.T, src, dir string) string {
	t.Helper()

	cmd := exec.Command("git", "clone", "--bare", src, dir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	require.NoError(t, cmd.Run(), "git clone --bare failed")
	return dir
}

// Git runs a git command in the repository and returns its trimmed output
func (r *GitRepo) Git(t *testing.T, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// WriteFile writes a file relative to the repository root
func (r *GitRepo) WriteFile(t *testing.T, name, content string) {
	t.Helper()

	path := filepath.Join(r.Dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// Commit stages everything and commits
func (r *GitRepo) Commit(t *testing.T, message string) {
	t.Helper()

	r.Git(t, "add", "--all")
	r.Git(t, "commit", "--message", message)
}

// CurrentBranch returns the branch HEAD is on
func (r *GitRepo) CurrentBranch(t *testing.T) string {
	t.Helper()
	return r.Git(t, "branch", "--show-current")
}

package git

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lassoerrors "lasso.dev/lasso/internal/errors"
	"lasso.dev/lasso/testhelpers"
)

func TestRunCapturesStderrOnFailure(t *testing.T) {
	t.Parallel()

	repo := testhelpers.NewGitRepo(t, t.TempDir())
	runner := NewRunner(repo.Dir)

	_, err := runner.Run(context.Background(), "checkout", "no-such-branch")
	require.Error(t, err)

	var gitErr *lassoerrors.GitCommandError
	require.True(t, errors.As(err, &gitErr))
	require.NotEmpty(t, gitErr.Stderr)
	require.Contains(t, gitErr.Args, "no-such-branch")
}

func TestBranchLifecycle(t *testing.T) {
	t.Parallel()

	repo := testhelpers.NewGitRepo(t, t.TempDir())
	repo.WriteFile(t, "a.txt", "a\n")
	repo.Commit(t, "initial commit")

	runner := NewRunner(repo.Dir)
	ctx := context.Background()

	current, err := runner.CurrentBranch(ctx)
	require.NoError(t, err)
	require.Equal(t, "main", current)

	has, err := runner.HasBranch(ctx, "fix-typos")
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, runner.CreateAndCheckoutBranch(ctx, "fix-typos"))
	current, err = runner.CurrentBranch(ctx)
	require.NoError(t, err)
	require.Equal(t, "fix-typos", current)

	require.NoError(t, runner.CheckoutBranch(ctx, "main"))
	has, err = runner.HasBranch(ctx, "fix-typos")
	require.NoError(t, err)
	require.True(t, has)
}

func TestStageAllAndCommit(t *testing.T) {
	t.Parallel()

	repo := testhelpers.NewGitRepo(t, t.TempDir())
	repo.WriteFile(t, "a.txt", "a\n")
	repo.Commit(t, "initial commit")

	runner := NewRunner(repo.Dir)
	ctx := context.Background()

	dirty, err := runner.IsDirty(ctx)
	require.NoError(t, err)
	require.False(t, dirty)

	repo.WriteFile(t, "a.txt", "changed\n")
	repo.WriteFile(t, "sub/new.txt", "new\n")

	dirty, err = runner.IsDirty(ctx)
	require.NoError(t, err)
	require.True(t, dirty)

	files, err := runner.ChangedFiles(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.txt", "sub/"}, files)

	require.NoError(t, runner.StageAll(ctx))
	require.NoError(t, runner.Commit(ctx, "apply fleet change"))

	dirty, err = runner.IsDirty(ctx)
	require.NoError(t, err)
	require.False(t, dirty)

	out, err := runner.Run(ctx, "log", "-1", "--format=%s")
	require.NoError(t, err)
	require.Equal(t, "apply fleet change", out)
}

func TestChangedFilesKeepsFullPathOfFirstEntry(t *testing.T) {
	t.Parallel()

	repo := testhelpers.NewGitRepo(t, t.TempDir())
	repo.WriteFile(t, "alpha.txt", "a\n")
	repo.Commit(t, "initial commit")

	runner := NewRunner(repo.Dir)
	ctx := context.Background()

	// A lone modified tracked file reports as " M alpha.txt"; the path
	// must come back whole
	repo.WriteFile(t, "alpha.txt", "changed\n")
	files, err := runner.ChangedFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha.txt"}, files)

	repo.Commit(t, "update alpha")
	repo.Git(t, "mv", "alpha.txt", "beta.txt")
	files, err = runner.ChangedFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"beta.txt"}, files, "renames report the new path")
}

func TestCommitsAheadAndAheadBehind(t *testing.T) {
	t.Parallel()

	repo := testhelpers.NewGitRepo(t, t.TempDir())
	repo.WriteFile(t, "a.txt", "a\n")
	repo.Commit(t, "initial commit")

	runner := NewRunner(repo.Dir)
	ctx := context.Background()

	require.NoError(t, runner.CreateAndCheckoutBranch(ctx, "fix-typos"))

	ahead, err := runner.CommitsAhead(ctx, "main", "fix-typos")
	require.NoError(t, err)
	require.Zero(t, ahead)

	repo.WriteFile(t, "b.txt", "b\n")
	repo.Commit(t, "first change")
	repo.WriteFile(t, "c.txt", "c\n")
	repo.Commit(t, "second change")

	ahead, err = runner.CommitsAhead(ctx, "main", "fix-typos")
	require.NoError(t, err)
	require.Equal(t, 2, ahead)

	a, b, err := runner.AheadBehind(ctx, "main", "fix-typos")
	require.NoError(t, err)
	require.Equal(t, 2, a)
	require.Zero(t, b)
}

func TestStashRoundTrip(t *testing.T) {
	t.Parallel()

	repo := testhelpers.NewGitRepo(t, t.TempDir())
	repo.WriteFile(t, "a.txt", "a\n")
	repo.Commit(t, "initial commit")

	runner := NewRunner(repo.Dir)
	ctx := context.Background()

	repo.WriteFile(t, "a.txt", "modified\n")
	repo.WriteFile(t, "untracked.txt", "new\n")

	require.NoError(t, runner.StashPush(ctx))
	dirty, err := runner.IsDirty(ctx)
	require.NoError(t, err)
	require.False(t, dirty, "stash push must clear the tree")

	require.NoError(t, runner.StashPop(ctx))
	files, err := runner.ChangedFiles(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.txt", "untracked.txt"}, files)
}

func TestHardResetAndClean(t *testing.T) {
	t.Parallel()

	repo := testhelpers.NewGitRepo(t, t.TempDir())
	repo.WriteFile(t, "a.txt", "a\n")
	repo.Commit(t, "initial commit")

	runner := NewRunner(repo.Dir)
	ctx := context.Background()

	repo.WriteFile(t, "a.txt", "modified\n")
	repo.WriteFile(t, "junk.txt", "junk\n")

	require.NoError(t, runner.HardReset(ctx))
	require.NoError(t, runner.Clean(ctx))

	dirty, err := runner.IsDirty(ctx)
	require.NoError(t, err)
	require.False(t, dirty)
	require.NoFileExists(t, filepath.Join(repo.Dir, "junk.txt"))
}

func TestCloneAndRemotes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	origin := testhelpers.NewGitRepo(t, filepath.Join(root, "origin"))
	origin.WriteFile(t, "a.txt", "a\n")
	origin.Commit(t, "initial commit")

	ctx := context.Background()
	cloneDir := filepath.Join(root, "clone")
	require.NoError(t, Clone(ctx, origin.Dir, cloneDir, 1))

	runner := NewRunner(cloneDir)
	has, err := runner.HasRemote(ctx, "origin")
	require.NoError(t, err)
	require.True(t, has)

	has, err = runner.HasRemote(ctx, "upstream")
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, runner.AddRemote(ctx, "upstream", origin.Dir))
	has, err = runner.HasRemote(ctx, "upstream")
	require.NoError(t, err)
	require.True(t, has)
}

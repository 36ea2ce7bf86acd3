package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lassoerrors "lasso.dev/lasso/internal/errors"
	"lasso.dev/lasso/testhelpers"
)

func TestClonesOnlyCountsGitDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ws := New(root, "testorg")
	require.NoError(t, ws.EnsureLayout())

	// A plain directory without .git is not a clone
	require.NoError(t, os.MkdirAll(filepath.Join(ws.ReposDir(), "not-a-clone"), 0750))
	testhelpers.NewGitRepo(t, ws.ClonePath("beta"))
	testhelpers.NewGitRepo(t, ws.ClonePath("alpha"))

	clones, err := ws.Clones()
	require.NoError(t, err)
	require.Len(t, clones, 2)
	require.Equal(t, "alpha", clones[0].Name)
	require.Equal(t, "beta", clones[1].Name)

	require.True(t, ws.HasClone("alpha"))
	require.False(t, ws.HasClone("not-a-clone"))
	require.False(t, ws.HasClone("never-synced"))
}

func TestClonesEmptyWorkspace(t *testing.T) {
	t.Parallel()

	ws := New(t.TempDir(), "testorg")
	clones, err := ws.Clones()
	require.NoError(t, err)
	require.Empty(t, clones)
}

func TestInspectReportsBranchAndDirtiness(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ws := New(root, "testorg")
	require.NoError(t, ws.EnsureLayout())

	repo := testhelpers.NewGitRepo(t, ws.ClonePath("alpha"))
	repo.WriteFile(t, "file.txt", "content\n")
	repo.Commit(t, "initial commit")

	state, err := ws.Inspect("alpha")
	require.NoError(t, err)
	require.Equal(t, "main", state.CurrentBranch)
	require.False(t, state.Dirty)

	repo.Git(t, "checkout", "-b", "fix-typos")
	repo.WriteFile(t, "file.txt", "changed\n")

	state, err = ws.Inspect("alpha")
	require.NoError(t, err)
	require.Equal(t, "fix-typos", state.CurrentBranch)
	require.True(t, state.Dirty)
}

func TestInspectMissingClone(t *testing.T) {
	t.Parallel()

	ws := New(t.TempDir(), "testorg")
	_, err := ws.Inspect("ghost")
	require.Error(t, err)
	require.True(t, errors.Is(err, lassoerrors.ErrCloneMissing))
	require.Contains(t, err.Error(), "lasso sync")
}

func TestLockReturnsSameMutexPerRepo(t *testing.T) {
	t.Parallel()

	ws := New(t.TempDir(), "testorg")
	require.Same(t, ws.Lock("alpha"), ws.Lock("alpha"))
	require.NotSame(t, ws.Lock("alpha"), ws.Lock("beta"))
}

package initiative

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileYieldsEmptyStore(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "status.json"))
	require.NoError(t, err)
	require.Empty(t, store.Initiatives())
}

func TestOpenCorruptFileIsFatal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0600))

	_, err := Open(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unreadable")
}

func TestUpsertPersistsAndReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "status.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Upsert(Entry{
		Initiative: "fix-typos",
		Repo:       "recipes",
		State:      StateSubmitted,
		PRURL:      "https://github.example/org/recipes/pull/1",
	}))

	reloaded, err := Open(path)
	require.NoError(t, err)

	entry, ok := reloaded.Get("fix-typos", "recipes")
	require.True(t, ok)
	require.Equal(t, StateSubmitted, entry.State)
	require.Equal(t, "https://github.example/org/recipes/pull/1", entry.PRURL)
	require.False(t, entry.UpdatedAt.IsZero(), "Upsert must stamp UpdatedAt")
}

func TestEnsureEntryNeverDowngradesState(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "status.json"))
	require.NoError(t, err)

	require.NoError(t, store.Upsert(Entry{Initiative: "fix-typos", Repo: "recipes", State: StateReady}))
	require.NoError(t, store.EnsureEntry("fix-typos", "recipes"))

	entry, ok := store.Get("fix-typos", "recipes")
	require.True(t, ok)
	require.Equal(t, StateReady, entry.State)
}

func TestAllSortsByRepo(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "status.json"))
	require.NoError(t, err)

	for _, repo := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.EnsureEntry("fix-typos", repo))
	}

	entries := store.All("fix-typos")
	require.Len(t, entries, 3)
	require.Equal(t, "alpha", entries[0].Repo)
	require.Equal(t, "mid", entries[1].Repo)
	require.Equal(t, "zeta", entries[2].Repo)
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"a":1}`), 0600))
	require.NoError(t, WriteFileAtomic(path, []byte(`{"a":2}`), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":2}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not survive a write")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

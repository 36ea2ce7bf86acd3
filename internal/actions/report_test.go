package actions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lasso.dev/lasso/internal/github"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/testhelpers"
)

func TestReportRecordsMergeAndCloseTransitions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	fake := &testhelpers.FakeGitHub{User: "me"}
	fake.SetPullRequest("testorg", "alpha", github.PullRequest{
		Number:  1,
		HTMLURL: "https://github.example/testorg/alpha/pull/1",
		State:   "closed",
		Merged:  true,
		HeadRef: "me:fix-typos",
	})
	fake.SetPullRequest("testorg", "beta", github.PullRequest{
		Number:  2,
		HTMLURL: "https://github.example/testorg/beta/pull/2",
		State:   "closed",
		HeadRef: "me:fix-typos",
	})
	rt := newTestRuntime(t, root, fake)

	for repo, url := range map[string]string{
		"alpha": "https://github.example/testorg/alpha/pull/1",
		"beta":  "https://github.example/testorg/beta/pull/2",
	} {
		require.NoError(t, rt.Store.Upsert(initiative.Entry{
			Initiative: "fix-typos",
			Repo:       repo,
			State:      initiative.StateSubmitted,
			PRURL:      url,
		}))
	}
	require.NoError(t, rt.Store.Upsert(initiative.Entry{
		Initiative: "fix-typos",
		Repo:       "gamma",
		State:      initiative.StateReady,
	}))

	require.NoError(t, Report(context.Background(), rt))

	entry, _ := rt.Store.Get("fix-typos", "alpha")
	require.Equal(t, initiative.StateMerged, entry.State)

	entry, _ = rt.Store.Get("fix-typos", "beta")
	require.Equal(t, initiative.StateClosed, entry.State)

	// Repos that never submitted are untouched
	entry, _ = rt.Store.Get("fix-typos", "gamma")
	require.Equal(t, initiative.StateReady, entry.State)
}

func TestReportWritesMarkdown(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rt := newTestRuntime(t, root, &testhelpers.FakeGitHub{User: "me"})

	require.NoError(t, rt.Store.Upsert(initiative.Entry{
		Initiative: "fix-typos",
		Repo:       "alpha",
		State:      initiative.StateMerged,
		PRURL:      "https://github.example/testorg/alpha/pull/1",
	}))

	require.NoError(t, Report(context.Background(), rt))

	data, err := os.ReadFile(filepath.Join(rt.Workspace.ReportsDir(), testOrg+".md"))
	require.NoError(t, err)
	markdown := string(data)
	require.Contains(t, markdown, "## fix-typos")
	require.Contains(t, markdown, "| alpha | merged |")
	require.Contains(t, markdown, "pull/1")
}

func TestReportNoInitiatives(t *testing.T) {
	t.Parallel()

	rt := newTestRuntime(t, t.TempDir(), &testhelpers.FakeGitHub{User: "me"})
	require.NoError(t, Report(context.Background(), rt))
	require.NoFileExists(t, filepath.Join(rt.Workspace.ReportsDir(), testOrg+".md"))
}

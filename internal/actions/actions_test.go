package actions

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lasso.dev/lasso/internal/config"
	"lasso.dev/lasso/internal/github"
	"lasso.dev/lasso/internal/initiative"
	"lasso.dev/lasso/internal/output"
	"lasso.dev/lasso/internal/runtime"
	"lasso.dev/lasso/internal/workspace"
	"lasso.dev/lasso/testhelpers"
)

const testOrg = "testorg"

// newTestRuntime builds a runtime context over a temp workspace with an
// in-memory GitHub client
func newTestRuntime(t *testing.T, root string, fake *testhelpers.FakeGitHub) *runtime.Context {
	t.Helper()

	if fake == nil {
		fake = &testhelpers.FakeGitHub{User: "me"}
	}

	ws := workspace.New(root, testOrg)
	require.NoError(t, ws.EnsureLayout())

	store, err := initiative.Open(filepath.Join(ws.InitiativesDir(), testOrg+"-status.json"))
	require.NoError(t, err)

	splog := output.NewSplog()
	splog.SetQuiet(true)

	return &runtime.Context{
		Config:    &config.Config{Org: testOrg, User: "me", Token: "test-token"},
		Workspace: ws,
		Splog:     splog,
		GitHub:    fake,
		Limiter:   github.NewLimiter(),
		Store:     store,
		Version:   "0.0.0-test",
	}
}

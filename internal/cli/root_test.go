package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmdRegistersAllVerbs(t *testing.T) {
	t.Parallel()

	root := NewRootCmd("1.0.0", "abc123", "2026-01-01")

	verbs := []string{"sync", "branch", "commit", "check", "pr", "reset", "status", "report"}
	registered := make(map[string]bool)
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}
	for _, verb := range verbs {
		require.True(t, registered[verb], "verb %s is not registered", verb)
	}

	require.Contains(t, root.Version, "1.0.0")
	require.Contains(t, root.Version, "abc123")
}

func TestRootCmdPersistentFlags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd("dev", "none", "unknown")
	for _, name := range []string{"org", "user", "token", "workspace", "exclude-repo"} {
		require.NotNil(t, root.PersistentFlags().Lookup(name), "missing persistent flag --%s", name)
	}
}

func TestCommitRequiresMessageFlag(t *testing.T) {
	t.Parallel()

	root := NewRootCmd("dev", "none", "unknown")
	root.SetArgs([]string{"commit"})
	require.Error(t, root.Execute(), "commit without --message must fail flag validation")
}

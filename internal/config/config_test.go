package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsEmptyConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	require.Empty(t, cfg.Org)
}

func TestLoadCorruptFileIsFatal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestResolveFlagBeatsStoredConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	stored := &Config{Org: "stored-org", User: "stored-user", Token: "stored-token"}
	require.NoError(t, stored.Save(path))

	cfg, err := Resolve(path, Flags{Org: "flag-org"}, nil)
	require.NoError(t, err)
	require.Equal(t, "flag-org", cfg.Org)
	require.Equal(t, "stored-user", cfg.User)
	require.Equal(t, "stored-token", cfg.Token)

	// The merged result is persisted
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "flag-org", reloaded.Org)
}

func TestResolveEnvTokenFillsGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	stored := &Config{Org: "org", User: "user"}
	require.NoError(t, stored.Save(path))

	t.Setenv("LASSO_GITHUB_TOKEN", "env-token")

	cfg, err := Resolve(path, Flags{}, nil)
	require.NoError(t, err)
	require.Equal(t, "env-token", cfg.Token)
}

func TestResolveStoredTokenBeatsEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	stored := &Config{Org: "org", User: "user", Token: "stored-token"}
	require.NoError(t, stored.Save(path))

	t.Setenv("LASSO_GITHUB_TOKEN", "env-token")

	cfg, err := Resolve(path, Flags{}, nil)
	require.NoError(t, err)
	require.Equal(t, "stored-token", cfg.Token)
}

func TestResolveMissingValueWithoutPrompterFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	t.Setenv("LASSO_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	_, err := Resolve(path, Flags{User: "user", Token: "token"}, nil)
	require.Error(t, err, "missing org with no prompter must fail")
}

func TestResolveSavesTokenOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Resolve(path, Flags{Org: "org", User: "user", Token: "secret"}, nil)
	require.NoError(t, err)
	require.Equal(t, "secret", cfg.Token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestResolveTrimsOrgFromExclusions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	flags := Flags{
		Org:          "autopkg",
		User:         "user",
		Token:        "token",
		ExcludeRepos: []string{"autopkg/recipes", "plain-name"},
	}
	cfg, err := Resolve(path, flags, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"recipes", "plain-name"}, cfg.ExcludedRepos)

	// The caller's flag slice is never rewritten
	require.Equal(t, []string{"autopkg/recipes", "plain-name"}, flags.ExcludeRepos)

	require.True(t, cfg.Excluded("recipes"))
	require.True(t, cfg.Excluded("autopkg/recipes"))
	require.True(t, cfg.Excluded("plain-name"))
	require.False(t, cfg.Excluded("other"))
}

func TestTrimLeadingOrg(t *testing.T) {
	t.Parallel()

	require.Equal(t, "recipes", TrimLeadingOrg("autopkg/recipes", "autopkg"))
	require.Equal(t, "recipes", TrimLeadingOrg("recipes", "autopkg"))
	require.Equal(t, "other/recipes", TrimLeadingOrg("other/recipes", "autopkg"))
}

// Package config provides campaign configuration management: the target
// organization, the operator's GitHub identity, and the API token.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

// DefaultFileName is the config document at the workspace root
const DefaultFileName = "config.json"

// Config is constructed once at startup and passed to every component;
// there is no ambient or static lookup.
type Config struct {
	Org           string   `json:"github_org"`
	User          string   `json:"github_username"`
	Token         string   `json:"github_token"`
	ExcludedRepos []string `json:"excluded_repos,omitempty"`
}

// Flags carries CLI overrides for config resolution
type Flags struct {
	Org          string
	User         string
	Token        string
	ExcludeRepos []string
}

// Prompter resolves a missing configuration value interactively.
// The core engine never blocks on terminal input directly; the CLI
// supplies this collaborator.
type Prompter interface {
	Input(prompt string) (string, error)
	Secret(prompt string) (string, error)
}

// Load reads the config document. A missing file yields an empty config;
// corrupt JSON is an error the caller must treat as fatal.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// Save rewrites the config document. The token is included, so the file
// is written owner-only.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Resolve merges configuration by priority: CLI flag, stored config,
// environment (a .env file is honored), then interactive prompt. The
// merged result is persisted. When a required value is still missing and
// no prompting is possible, resolution fails; callers abort before
// dispatching any work.
func Resolve(path string, flags Flags, prompter Prompter) (*Config, error) {
	config, err := Load(path)
	if err != nil {
		return nil, err
	}

	// .env files are a convenience for tokens; absence is fine
	_ = godotenv.Load()

	if flags.Org != "" {
		config.Org = flags.Org
	}
	if flags.User != "" {
		config.User = flags.User
	}
	if flags.Token != "" {
		config.Token = flags.Token
	}
	if config.Token == "" {
		if token := os.Getenv("LASSO_GITHUB_TOKEN"); token != "" {
			config.Token = token
		} else if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			config.Token = token
		}
	}

	if err := promptMissing(config, prompter); err != nil {
		return nil, err
	}

	if len(flags.ExcludeRepos) > 0 {
		// Copy so the trim below never mutates the caller's flag slice
		config.ExcludedRepos = append([]string(nil), flags.ExcludeRepos...)
	}
	for i, repo := range config.ExcludedRepos {
		config.ExcludedRepos[i] = TrimLeadingOrg(repo, config.Org)
	}

	if err := config.Save(path); err != nil {
		return nil, err
	}
	return config, nil
}

func promptMissing(config *Config, prompter Prompter) error {
	type field struct {
		value  *string
		prompt string
		secret bool
	}
	fields := []field{
		{&config.Org, "Enter GitHub org", false},
		{&config.User, "Enter GitHub username", false},
		{&config.Token, "Enter GitHub personal access token", true},
	}

	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		if prompter == nil || !Interactive() {
			return fmt.Errorf("missing configuration (%s) and not running interactively", f.prompt)
		}
		var (
			value string
			err   error
		)
		if f.secret {
			value, err = prompter.Secret(f.prompt)
		} else {
			value, err = prompter.Input(f.prompt)
		}
		if err != nil {
			return err
		}
		if value == "" {
			return fmt.Errorf("%s: no value provided", f.prompt)
		}
		*f.value = value
	}
	return nil
}

// Interactive reports whether stdin is a terminal
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// Excluded reports whether a repository is on the exclusion list
func (c *Config) Excluded(repo string) bool {
	name := TrimLeadingOrg(repo, c.Org)
	for _, excluded := range c.ExcludedRepos {
		if excluded == name {
			return true
		}
	}
	return false
}

// TrimLeadingOrg strips a leading "org/" from a repository name.
// Example: autopkg/recipes -> recipes
func TrimLeadingOrg(repo, org string) string {
	return strings.TrimPrefix(repo, org+"/")
}

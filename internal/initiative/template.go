package initiative

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// nameReplaceRegex matches characters that are not valid in initiative names
	nameReplaceRegex = regexp.MustCompile(`[^-a-zA-Z0-9]+`)

	// hyphenRunRegex collapses runs of hyphens left by replacement
	hyphenRunRegex = regexp.MustCompile(`-+`)
)

// SanitizeName converts an operator-supplied initiative name into a
// branch-safe identifier of letters, digits, and dashes
func SanitizeName(name string) string {
	name = nameReplaceRegex.ReplaceAllString(name, "-")
	name = hyphenRunRegex.ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// TemplatePath returns the PR template file for an initiative
func TemplatePath(dir, name string) string {
	return filepath.Join(dir, name+".md")
}

// EnsureTemplate creates an initiative's PR template if absent. An existing
// template is never overwritten.
func EnsureTemplate(dir, name, version string) error {
	path := TemplatePath(dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	content := fmt.Sprintf(
		"# %s\n\n"+
			"(DESCRIPTION OF CHANGES IN THIS PULL REQUEST)\n\n"+
			"Thanks for considering!\n\n"+
			"%s\n",
		name, Attribution(version))
	return os.WriteFile(path, []byte(content), 0644)
}

// Attribution is the line appended to every PR body identifying the tool
func Attribution(version string) string {
	return fmt.Sprintf("Submitted with [Lasso](https://lasso.dev) v%s.", version)
}

// LoadTemplate parses a PR template: the first heading is the title, the
// remainder is the body
func LoadTemplate(path string) (title, body string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "# ") {
		title = strings.TrimSpace(strings.TrimPrefix(lines[0], "# "))
		body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
		return title, body, nil
	}

	return "", strings.TrimSpace(string(data)), nil
}

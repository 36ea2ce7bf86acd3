package initiative

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"fix-typos", "fix-typos"},
		{"Fix Typos!", "Fix-Typos"},
		{"update/ci config", "update-ci-config"},
		{"--already--dashed--", "already-dashed"},
		{"añadir-soporte", "a-adir-soporte"},
		{"***", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestEnsureTemplateCreatesOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, EnsureTemplate(dir, "fix-typos", "1.2.3"))

	path := TemplatePath(dir, "fix-typos")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# fix-typos")
	require.Contains(t, string(data), Attribution("1.2.3"))

	// An edited template must survive a re-run
	require.NoError(t, os.WriteFile(path, []byte("# Custom title\n\ncustom body\n"), 0644))
	require.NoError(t, EnsureTemplate(dir, "fix-typos", "1.2.3"))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# Custom title\n\ncustom body\n", string(data))
}

func TestLoadTemplateSplitsTitleAndBody(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fix-typos.md")
	require.NoError(t, os.WriteFile(path, []byte("# Fix the typos\n\nThis PR fixes typos.\n"), 0644))

	title, body, err := LoadTemplate(path)
	require.NoError(t, err)
	require.Equal(t, "Fix the typos", title)
	require.Equal(t, "This PR fixes typos.", body)
}

func TestLoadTemplateWithoutHeading(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plain.md")
	require.NoError(t, os.WriteFile(path, []byte("just a body\n"), 0644))

	title, body, err := LoadTemplate(path)
	require.NoError(t, err)
	require.Empty(t, title)
	require.Equal(t, "just a body", body)
}

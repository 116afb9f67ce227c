package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizi2000/agentzero-cli/internal/redact"
)

func TestIsSensitiveFile(t *testing.T) {
	sensitive := []string{
		".env",
		".env.local",
		"config.yaml",
		"secrets.json",
		"credentials.csv",
		"server.key",
		"cert.pem",
		"id_rsa",
		"id_ed25519",
		".ssh/id_rsa",
		"deploy/secrets.yaml",
	}
	for _, p := range sensitive {
		assert.True(t, IsSensitiveFile(p), p)
	}

	clean := []string{
		"README.md",
		"main.go",
		"config.example.yaml",
		"docs/keys.md",
		"src/env.go",
	}
	for _, p := range clean {
		assert.False(t, IsSensitiveFile(p), p)
	}
}

func buildWorkspace(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	r, err := NewResolver(root)
	require.NoError(t, err)
	return r, r.Root()
}

func TestSelectPreviewFiles_SkipsSensitive(t *testing.T) {
	r, _ := buildWorkspace(t)
	b := NewContextBuilder(r, nil, []string{"server.key", "README.md", "notes.txt"})

	selected := b.SelectPreviewFiles([]string{"server.key", "README.md", "unlisted.txt"})
	assert.Equal(t, []string{"README.md"}, selected,
		"sensitive names and unconfigured files are both excluded")
}

func TestReadPreview_RedactsSecrets(t *testing.T) {
	r, root := buildWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"),
		[]byte("api_key: super-secret\nother: value"), 0o600))

	red, err := redact.New([]string{"api_key"}, nil)
	require.NoError(t, err)
	b := NewContextBuilder(r, red, []string{"secret.txt"})

	preview, ok := b.ReadPreview("secret.txt")
	require.True(t, ok)
	assert.NotContains(t, preview, "super-secret")
	assert.Contains(t, preview, redact.Sentinel)
	assert.Contains(t, preview, "other: value")
}

func TestReadCapped_SurvivesShortReads(t *testing.T) {
	content := strings.Repeat("line of preview text\n", 40)

	got, err := readCapped(iotest.OneByteReader(strings.NewReader(content)))
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadCapped_TruncatesAtCap(t *testing.T) {
	content := strings.Repeat("x", previewByteCap+100)

	got, err := readCapped(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", previewByteCap)+"\n... (truncated)", got)
}

func TestReadPreview_MissingFile(t *testing.T) {
	r, _ := buildWorkspace(t)
	b := NewContextBuilder(r, nil, nil)
	_, ok := b.ReadPreview("nope.txt")
	assert.False(t, ok)
}

func TestBuild_SectionsPerFile(t *testing.T) {
	r, root := buildWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("beta"), 0o644))

	b := NewContextBuilder(r, nil, []string{"a.txt", "b.txt"})
	out := b.Build()
	assert.Contains(t, out, "=== a.txt ===")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "=== b.txt ===")
	assert.Contains(t, out, "beta")
}

func TestBuild_EmptyWhenNothingIncludable(t *testing.T) {
	r, _ := buildWorkspace(t)
	b := NewContextBuilder(r, nil, []string{".env"})
	assert.Empty(t, b.Build())
}

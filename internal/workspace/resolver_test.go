package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	r, err := NewResolver(root)
	require.NoError(t, err)
	return r, r.Root()
}

func TestResolve_RelativeWithinRoot(t *testing.T) {
	r, root := newResolver(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	abs, err := r.Resolve("src/main.go")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "main.go"), abs)
}

func TestResolve_RejectsAbsolutePath(t *testing.T) {
	r, _ := newResolver(t)
	_, err := r.Resolve("/etc/passwd")
	require.Error(t, err)
	assert.True(t, IsPathEscape(err))
}

func TestResolve_RejectsDotDotClimb(t *testing.T) {
	r, _ := newResolver(t)
	for _, p := range []string{"..", "../x", "a/../../x", "../../etc/passwd"} {
		_, err := r.Resolve(p)
		require.Error(t, err, p)
		assert.True(t, IsPathEscape(err), p)
	}
}

func TestResolve_InternalDotDotIsFine(t *testing.T) {
	r, root := newResolver(t)
	abs, err := r.Resolve("a/b/../c.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "c.txt"), abs)
}

func TestResolve_SymlinkEscapeCaught(t *testing.T) {
	r, root := newResolver(t)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "out")))

	_, err := r.Resolve("out")
	require.Error(t, err)
	assert.True(t, IsPathEscape(err), "workspace-internal symlink pointing outside must fail")
}

func TestResolve_SymlinkedParentEscapeCaught(t *testing.T) {
	r, root := newResolver(t)

	outsideDir := t.TempDir()
	require.NoError(t, os.Symlink(outsideDir, filepath.Join(root, "vault")))

	// The target file does not exist yet; the symlinked parent must still
	// be dereferenced and rejected.
	_, err := r.Resolve("vault/new.txt")
	require.Error(t, err)
	assert.True(t, IsPathEscape(err))
}

func TestResolve_SymlinkWithinRootAllowed(t *testing.T) {
	r, root := newResolver(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "alias.txt")))

	abs, err := r.Resolve("alias.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(abs, root))
}

func TestResolve_NewFileUnderRoot(t *testing.T) {
	r, root := newResolver(t)
	abs, err := r.Resolve("brand/new/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "brand", "new", "file.txt"), abs)
}

func TestResolve_SiblingPrefixNotConfused(t *testing.T) {
	// /tmp/xxx/ws-evil must not be treated as inside /tmp/xxx/ws.
	parent := t.TempDir()
	root := filepath.Join(parent, "ws")
	require.NoError(t, os.Mkdir(root, 0o755))
	evil := filepath.Join(parent, "ws-evil")
	require.NoError(t, os.Mkdir(evil, 0o755))

	r, err := NewResolver(root)
	require.NoError(t, err)
	require.NoError(t, os.Symlink(evil, filepath.Join(r.Root(), "link")))

	_, err = r.Resolve("link")
	require.Error(t, err)
	assert.True(t, IsPathEscape(err), "segment-boundary check must reject the sibling prefix")
}

func TestResolve_EmptyPathRejected(t *testing.T) {
	r, _ := newResolver(t)
	_, err := r.Resolve("")
	assert.True(t, IsPathEscape(err))
}

func TestNewResolver_RejectsFileRoot(t *testing.T) {
	f := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, err := NewResolver(f)
	assert.Error(t, err)
}

package modifier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyforge/storyforge/internal/adapters/outbound/modifier"
	"github.com/storyforge/storyforge/internal/domain"
)

func newModifier(t *testing.T) (*modifier.CodeModifier, string) {
	t.Helper()
	root := t.TempDir()
	m, err := modifier.New(root, nil)
	require.NoError(t, err)
	return m, root
}

func TestCodeModifier_WriteFileCreatesNew(t *testing.T) {
	m, root := newModifier(t)
	target := filepath.Join(root, "src", "app.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))

	require.NoError(t, m.WriteFile(target, "print('hi')\n"))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(content))
}

func TestCodeModifier_WriteFileBacksUpExisting(t *testing.T) {
	m, root := newModifier(t)
	target := filepath.Join(root, "app.py")
	require.NoError(t, os.WriteFile(target, []byte("before"), 0644))

	require.NoError(t, m.WriteFile(target, "after"))
	require.NoError(t, m.Rollback(target))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "before", string(content))
}

func TestCodeModifier_RollbackWithoutWrite(t *testing.T) {
	m, root := newModifier(t)
	target := filepath.Join(root, "untouched.py")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	assert.ErrorIs(t, m.Rollback(target), domain.ErrBackupNotFound)
}

func TestCodeModifier_ValidatePathRejectsTraversal(t *testing.T) {
	m, root := newModifier(t)

	cases := []string{
		filepath.Join(root, "..", "evil.py"),
		filepath.Join(root, "a", "..", "..", "evil.py"),
		"/etc/passwd",
	}
	for _, path := range cases {
		_, err := m.ValidatePath(path)
		assert.ErrorIs(t, err, domain.ErrOutsideProjectRoot, "path %q", path)
	}
}

func TestCodeModifier_ValidatePathAcceptsInside(t *testing.T) {
	m, root := newModifier(t)

	validated, err := m.ValidatePath(filepath.Join(root, "pkg", "new_file.py"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pkg", "new_file.py"), validated)
}

func TestCodeModifier_ValidatePathRejectsSymlinkEscape(t *testing.T) {
	m, root := newModifier(t)
	outside := t.TempDir()

	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(outside, link))

	_, err := m.ValidatePath(filepath.Join(link, "escape.py"))
	assert.ErrorIs(t, err, domain.ErrOutsideProjectRoot)
}

func TestCodeModifier_WriteFileRejectsOutsideRoot(t *testing.T) {
	m, _ := newModifier(t)
	outside := filepath.Join(t.TempDir(), "elsewhere.py")

	err := m.WriteFile(outside, "nope")
	assert.ErrorIs(t, err, domain.ErrOutsideProjectRoot)
}

func TestCodeModifier_WriteFileLeavesNoTempOnSuccess(t *testing.T) {
	m, root := newModifier(t)
	target := filepath.Join(root, "app.py")

	require.NoError(t, m.WriteFile(target, "content"))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

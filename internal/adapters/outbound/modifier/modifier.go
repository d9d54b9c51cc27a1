package modifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/storyforge/storyforge/internal/adapters/outbound/backup"
	"github.com/storyforge/storyforge/internal/domain"
)

// CodeModifier writes files atomically, scoped to the project root, backing
// up existing targets before every mutation.
type CodeModifier struct {
	projectRoot string
	backups     *backup.Manager
}

// New creates a CodeModifier. The backup manager may be shared with other
// components; if nil, a fresh one is created.
func New(projectRoot string, backups *backup.Manager) (*CodeModifier, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	if backups == nil {
		backups = backup.New(root)
	}
	return &CodeModifier{projectRoot: root, backups: backups}, nil
}

// ValidatePath resolves symlinks and relative segments and fails with
// domain.ErrOutsideProjectRoot when the result is not a descendant of the
// project root. It must be called before every write or rollback.
func (m *CodeModifier) ValidatePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	// The target may not exist yet; resolve symlinks on the deepest existing
	// ancestor so a link pointing out of the tree cannot slip through.
	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks: %w", err)
	}

	rootResolved, err := filepath.EvalSymlinks(m.projectRoot)
	if err != nil {
		rootResolved = m.projectRoot
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrOutsideProjectRoot, path)
	}
	return abs, nil
}

// resolveExisting evaluates symlinks for the longest existing prefix of path
// and reattaches the non-existing suffix.
func resolveExisting(abs string) (string, error) {
	remainder := ""
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, remainder), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		remainder = filepath.Join(filepath.Base(current), remainder)
		current = parent
	}
}

// WriteFile writes content to path atomically. An existing target is backed
// up first. The content goes to a temporary file in the target's directory
// (so the rename stays on one filesystem), is synced to stable storage, then
// atomically replaces the target. On any failure the partial temp file is
// removed; the live target is never left truncated.
func (m *CodeModifier) WriteFile(path, content string) error {
	target, err := m.ValidatePath(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(target); err == nil {
		if _, err := m.backups.CreateBackup(target); err != nil {
			return fmt.Errorf("backing up before write: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return cause
	}

	if _, err := tmp.WriteString(content); err != nil {
		return cleanup(fmt.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", target, err)
	}
	return nil
}

// Rollback restores path to its last backed-up content.
func (m *CodeModifier) Rollback(path string) error {
	target, err := m.ValidatePath(path)
	if err != nil {
		return err
	}
	return m.backups.RestoreBackup(target)
}

// Backups exposes the underlying backup manager so callers can clear or
// sweep backups after a batch settles.
func (m *CodeModifier) Backups() *backup.Manager {
	return m.backups
}

package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storyforge/storyforge/internal/domain"
)

// DefaultDir is the project-relative directory holding backup artifacts.
const DefaultDir = ".storyforge/backups"

const backupExt = ".bak"

// Manager creates point-in-time copies of files before mutation and restores
// them on demand. The active-backup table is process-local: a crashed process
// leaves orphaned backup files on disk, intentionally retained for manual
// recovery until the age-based cleanup sweeps them.
type Manager struct {
	projectRoot string
	backupDir   string

	mu     sync.Mutex
	active map[string]string // absolute source path → backup path
}

// New creates a Manager rooted at projectRoot, storing backups under
// DefaultDir.
func New(projectRoot string) *Manager {
	return &Manager{
		projectRoot: projectRoot,
		backupDir:   filepath.Join(projectRoot, filepath.FromSlash(DefaultDir)),
		active:      make(map[string]string),
	}
}

// CreateBackup copies path into the backup directory under a globally unique
// name and records it as the active backup for that path. A second call for
// the same path replaces the table entry without deleting the earlier backup
// file. Returns the backup path.
func (m *Manager) CreateBackup(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("cannot backup %s: %w", abs, err)
	}

	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	backupPath := filepath.Join(m.backupDir, m.backupName(abs))
	if err := copyFile(abs, backupPath); err != nil {
		return "", fmt.Errorf("copying to backup: %w", err)
	}

	m.mu.Lock()
	m.active[abs] = backupPath
	m.mu.Unlock()

	return backupPath, nil
}

// backupName combines the source's project-relative path, a millisecond
// timestamp, and a random token, so rapid repeated backups of the same file
// within the same millisecond never collide, even across concurrent runs.
func (m *Manager) backupName(abs string) string {
	rel, err := filepath.Rel(m.projectRoot, abs)
	if err != nil {
		rel = filepath.Base(abs)
	}
	flattened := strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
	return fmt.Sprintf("%s_%d_%s%s", flattened, time.Now().UnixMilli(), uuid.NewString()[:8], backupExt)
}

// RestoreBackup copies the active backup's content back over the live file.
// Returns domain.ErrBackupNotFound if no active entry exists or the backup
// file has since been deleted externally.
func (m *Manager) RestoreBackup(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	m.mu.Lock()
	backupPath, ok := m.active[abs]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBackupNotFound, abs)
	}
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBackupNotFound, abs)
	}

	if err := copyFile(backupPath, abs); err != nil {
		return fmt.Errorf("restoring backup: %w", err)
	}
	return nil
}

// ClearBackup removes the active-backup record for a path without touching
// the backup file on disk. Called after a batch is confirmed good.
func (m *Manager) ClearBackup(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	delete(m.active, abs)
	m.mu.Unlock()
}

// CleanupOldBackups deletes backup files older than maxAge, except any file
// currently referenced by the active-backup table. Individual unlink failures
// are ignored so a concurrent cleanup never aborts the sweep.
func (m *Manager) CleanupOldBackups(maxAge time.Duration) error {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading backup dir: %w", err)
	}

	m.mu.Lock()
	activePaths := make(map[string]bool, len(m.active))
	for _, p := range m.active {
		activePaths[p] = true
	}
	m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupExt) {
			continue
		}
		full := filepath.Join(m.backupDir, entry.Name())
		if activePaths[full] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(full)
		}
	}
	return nil
}

// copyFile copies contents and permission bits from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

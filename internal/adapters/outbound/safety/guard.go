package safety

import (
	"os"

	"github.com/go-git/go-git/v5"
)

// Guard runs pre-flight checks that gate destructive operations. Its
// predicates are purely advisory and have no side effects.
type Guard struct {
	projectRoot string
}

// New creates a Guard for the given project root.
func New(projectRoot string) *Guard {
	return &Guard{projectRoot: projectRoot}
}

// CheckCleanWorkingTree reports whether the project's working tree has zero
// staged, unstaged, or untracked changes. Any inability to determine status
// (not a repository, corrupt repository) fails closed and returns false.
func (g *Guard) CheckCleanWorkingTree() bool {
	repo, err := git.PlainOpen(g.projectRoot)
	if err != nil {
		return false
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false
	}

	status, err := worktree.Status()
	if err != nil {
		return false
	}

	return status.IsClean()
}

// ValidateFileSize reports whether the file at path is small enough to
// modify safely. Nonexistent files pass (there is nothing to damage); any
// other stat failure fails closed, since the file may exist and be oversized.
func (g *Guard) ValidateFileSize(path string, maxKB int) bool {
	info, err := os.Stat(path)
	if err != nil {
		return os.IsNotExist(err)
	}
	return info.Size() <= int64(maxKB)*1024
}

package domain

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectPaths holds the resolved layout of a storyforge project. It is
// passed explicitly into every service call; there is no process-global
// "current project".
type ProjectPaths struct {
	Root             string
	SprintStatusFile string
	StoriesDir       string
	EpicsFile        string
	ArchitectureFile string // optional, empty when absent
}

// ResolveProject validates projectPath as a storyforge project and resolves
// its well-known files. The sprint status file is searched at
// docs/sprint-artifacts/sprint-status.yaml first, then at the project root.
func ResolveProject(projectPath string) (*ProjectPaths, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root does not exist: %s", root)
	}

	var sprintStatus, storiesDir string
	for _, candidate := range []string{
		filepath.Join(root, "docs", "sprint-artifacts", "sprint-status.yaml"),
		filepath.Join(root, "sprint-status.yaml"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			sprintStatus = candidate
			storiesDir = filepath.Dir(candidate)
			break
		}
	}
	if sprintStatus == "" {
		return nil, fmt.Errorf("cannot find sprint-status.yaml in %s (expected at docs/sprint-artifacts/ or project root)", root)
	}

	var epicsFile string
	for _, candidate := range []string{
		filepath.Join(root, "docs", "epics.md"),
		filepath.Join(root, "epics.md"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			epicsFile = candidate
			break
		}
	}
	if epicsFile == "" {
		return nil, fmt.Errorf("cannot find epics.md in %s", root)
	}

	paths := &ProjectPaths{
		Root:             root,
		SprintStatusFile: sprintStatus,
		StoriesDir:       storiesDir,
		EpicsFile:        epicsFile,
	}

	for _, candidate := range []string{
		filepath.Join(root, "ARCHITECTURE.md"),
		filepath.Join(root, "docs", "architecture.md"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			paths.ArchitectureFile = candidate
			break
		}
	}

	return paths, nil
}

// StoryFile returns the path of a story's markdown file.
func (p *ProjectPaths) StoryFile(storyKey string) string {
	return filepath.Join(p.StoriesDir, storyKey+".md")
}

// ReviewsDir returns the directory holding saved reviews.
func (p *ProjectPaths) ReviewsDir() string {
	return filepath.Join(p.StoriesDir, "reviews")
}

// ReviewFile returns the path of a story's saved review.
func (p *ProjectPaths) ReviewFile(storyKey string) string {
	return filepath.Join(p.ReviewsDir(), storyKey+"-review.md")
}

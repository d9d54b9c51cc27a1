package domain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyforge/storyforge/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolveProject_StandardLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "sprint-artifacts", "sprint-status.yaml"), "development_status: {}\n")
	writeFile(t, filepath.Join(root, "docs", "epics.md"), "# Epics\n")

	project, err := domain.ResolveProject(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "docs", "sprint-artifacts", "sprint-status.yaml"), project.SprintStatusFile)
	assert.Equal(t, filepath.Join(root, "docs", "sprint-artifacts"), project.StoriesDir)
	assert.Equal(t, filepath.Join(root, "docs", "epics.md"), project.EpicsFile)
	assert.Empty(t, project.ArchitectureFile)
}

func TestResolveProject_RootLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sprint-status.yaml"), "development_status: {}\n")
	writeFile(t, filepath.Join(root, "epics.md"), "# Epics\n")
	writeFile(t, filepath.Join(root, "ARCHITECTURE.md"), "# Architecture\n")

	project, err := domain.ResolveProject(root)
	require.NoError(t, err)

	assert.Equal(t, root, project.StoriesDir)
	assert.Equal(t, filepath.Join(root, "ARCHITECTURE.md"), project.ArchitectureFile)
}

func TestResolveProject_MissingStatusFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "epics.md"), "# Epics\n")

	_, err := domain.ResolveProject(root)
	assert.ErrorContains(t, err, "sprint-status.yaml")
}

func TestResolveProject_MissingRoot(t *testing.T) {
	_, err := domain.ResolveProject(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestProjectPaths_Files(t *testing.T) {
	project := &domain.ProjectPaths{StoriesDir: "/proj/docs/sprint-artifacts"}

	assert.Equal(t, filepath.Join("/proj/docs/sprint-artifacts", "1-2-login.md"), project.StoryFile("1-2-login"))
	assert.Equal(t, filepath.Join("/proj/docs/sprint-artifacts", "reviews"), project.ReviewsDir())
	assert.Equal(t, filepath.Join("/proj/docs/sprint-artifacts", "reviews", "1-2-login-review.md"), project.ReviewFile("1-2-login"))
}

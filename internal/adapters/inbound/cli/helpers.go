package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/adapters/outbound/sprint"
	"github.com/storyforge/storyforge/internal/domain"
)

// resolveProject resolves the --path argument (or ".") into validated
// project paths.
func resolveProject(path string) (*domain.ProjectPaths, error) {
	if path == "" {
		path = "."
	}
	project, err := domain.ResolveProject(path)
	if err != nil {
		return nil, fmt.Errorf("resolving project: %w", err)
	}
	return project, nil
}

// statusStore builds the sprint status store for a project.
func statusStore(project *domain.ProjectPaths) *sprint.Store {
	return sprint.New(project.SprintStatusFile)
}

// writeJSON pretty-prints v to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

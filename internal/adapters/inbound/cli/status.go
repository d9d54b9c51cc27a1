package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/adapters/outbound/llm"
	"github.com/storyforge/storyforge/internal/adapters/outbound/tui"
	"github.com/storyforge/storyforge/internal/application"
)

func newStatusCmd() *cobra.Command {
	var (
		projectPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sprint status with story counts by state",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			summary, err := statusStore(project).StatusSummary()
			if err != nil {
				return fmt.Errorf("loading status summary: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, summary)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderStatusSummary(summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newNextCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show next actionable stories grouped by phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			stories := application.NewStoryService(llm.New(), statusStore(project))
			actions, err := stories.NextActions()
			if err != nil {
				return fmt.Errorf("loading next actions: %w", err)
			}
			return writeJSON(cmd, actions)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/adapters/outbound/gitinfo"
	"github.com/storyforge/storyforge/internal/adapters/outbound/llm"
	"github.com/storyforge/storyforge/internal/adapters/outbound/parser"
	"github.com/storyforge/storyforge/internal/application"
	"github.com/storyforge/storyforge/internal/domain"
)

func newReviewCmd() *cobra.Command {
	var (
		projectPath string
		baseBranch  string
	)

	cmd := &cobra.Command{
		Use:   "review <story-key>",
		Short: "Run adversarial code review on a story's changes",
		Long:  "Diff the working tree against the base branch, ask the review model for an adversarial review, save it, and extract structured issues.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			reviews := application.NewReviewService(llm.New(), gitinfo.New(), parser.New())
			outcome, err := reviews.ReviewStory(cmd.Context(), project, args[0], baseBranch)
			if err != nil {
				return fmt.Errorf("review failed: %w", err)
			}
			return writeJSON(cmd, outcome)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")
	cmd.Flags().StringVar(&baseBranch, "base", "", "Base branch to diff against (auto-detected when empty)")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "update <story-key> <status>",
		Short: "Update a story's workflow status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			store := statusStore(project)
			if err := store.UpdateStoryStatus(cmd.Context(), args[0], domain.Status(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}

func newEpicCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "epic <number>",
		Short: "Show the orchestration plan for a full epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			var epic int
			if _, err := fmt.Sscanf(args[0], "%d", &epic); err != nil {
				return fmt.Errorf("invalid epic number %q", args[0])
			}

			stories := application.NewStoryService(llm.New(), statusStore(project))
			plan, err := stories.PlanEpic(epic)
			if err != nil {
				return fmt.Errorf("planning epic: %w", err)
			}
			return writeJSON(cmd, plan)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}

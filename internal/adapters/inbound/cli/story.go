package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/adapters/outbound/llm"
	"github.com/storyforge/storyforge/internal/application"
)

func newStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Create and develop stories",
	}
	cmd.AddCommand(newStoryCreateCmd())
	cmd.AddCommand(newStoryDevelopCmd())
	return cmd
}

func newStoryCreateCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "create <story-key>",
		Short: "Generate a story implementation guide from the epics file",
		Long:  "Generate a story implementation guide from the epics file and mark the story ready-for-dev. The key's title portion may be free text; it is slug-normalized, so \"1-2-Login Flow\" creates story 1-2-login-flow.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			stories := application.NewStoryService(llm.New(), statusStore(project))
			storyFile, err := stories.CreateStory(cmd.Context(), project, args[0])
			if err != nil {
				return fmt.Errorf("creating story: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", storyFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}

func newStoryDevelopCmd() *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "develop <story-key>",
		Short: "Print a story's implementation guide and mark it in-progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			stories := application.NewStoryService(llm.New(), statusStore(project))
			content, err := stories.DevelopStory(cmd.Context(), project, args[0])
			if err != nil {
				return fmt.Errorf("developing story: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), content)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}

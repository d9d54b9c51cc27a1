package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storyforge",
		Short:         "AI-assisted development workflow orchestrator",
		Long:          "Storyforge tracks story status, generates stories and reviews via an LLM, parses review output into structured issues, and applies safe automated fixes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newNextCmd())
	cmd.AddCommand(newStoryCmd())
	cmd.AddCommand(newReviewCmd())
	cmd.AddCommand(newFixCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newEpicCmd())
	cmd.AddCommand(newCleanupCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

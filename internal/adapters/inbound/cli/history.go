package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/adapters/outbound/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		projectPath string
		limit       int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past auto-fix runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			entries, err := history.New().Load(project.Root)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			if asJSON {
				return writeJSON(cmd, entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no auto-fix runs recorded")
				return nil
			}
			for _, e := range entries {
				mode := ""
				if e.DryRun {
					mode = " (dry run)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s%s  fixed %d/%d, failed %d, skipped %d (%.0f%%)\n",
					e.Timestamp.Format("2006-01-02 15:04"), e.StoryKey, mode,
					e.Fixed, e.Total, e.Failed, e.Skipped, e.FixRate*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many recent runs (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

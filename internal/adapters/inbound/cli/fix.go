package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/adapters/outbound/backup"
	configloader "github.com/storyforge/storyforge/internal/adapters/outbound/config"
	"github.com/storyforge/storyforge/internal/adapters/outbound/gitinfo"
	"github.com/storyforge/storyforge/internal/adapters/outbound/history"
	"github.com/storyforge/storyforge/internal/adapters/outbound/modifier"
	"github.com/storyforge/storyforge/internal/adapters/outbound/parser"
	"github.com/storyforge/storyforge/internal/adapters/outbound/reporter"
	"github.com/storyforge/storyforge/internal/adapters/outbound/safety"
	"github.com/storyforge/storyforge/internal/adapters/outbound/strategies"
	"github.com/storyforge/storyforge/internal/adapters/outbound/testrunner"
	"github.com/storyforge/storyforge/internal/adapters/outbound/tui"
	"github.com/storyforge/storyforge/internal/application"
)

func newFixCmd() *cobra.Command {
	var (
		projectPath    string
		dryRun         bool
		autoOnly       bool
		noStatusUpdate bool
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "fix <story-key>",
		Short: "Apply automated fixes for a story's review issues",
		Long:  "Parse the story's saved review into structured issues and apply safe automated fixes with backup and rollback. A report artifact is always written.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			cfg, err := configloader.New().Load(project.Root)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			backups := backup.New(project.Root)
			files, err := modifier.New(project.Root, backups)
			if err != nil {
				return fmt.Errorf("preparing file access: %w", err)
			}

			svc := application.NewAutoFixService(
				parser.New(),
				safety.New(project.Root),
				statusStore(project),
				testrunner.New(project.Root, time.Duration(cfg.Safety.TimeoutSeconds)*time.Second),
				reporter.New(),
				cfg,
			).
				WithStrategies(strategies.NewFormattingStrategy(files)).
				WithBackups(backups).
				WithHistory(history.New()).
				WithGit(gitinfo.New())

			run, err := svc.Run(cmd.Context(), project, args[0], application.AutoFixOptions{
				DryRun:       dryRun,
				AutoOnly:     autoOnly,
				UpdateStatus: !noStatusUpdate,
			})
			if err != nil {
				return fmt.Errorf("auto-fix failed: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, run)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderFixRun(run))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report intended changes without mutating files")
	cmd.Flags().BoolVar(&autoOnly, "auto-only", false, "Only process issues classified as auto-fixable")
	cmd.Flags().BoolVar(&noStatusUpdate, "no-status-update", false, "Do not move the story to review after a validated run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newCleanupCmd() *cobra.Command {
	var (
		projectPath string
		maxAgeHours int
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stale backup files",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := resolveProject(projectPath)
			if err != nil {
				return err
			}

			backups := backup.New(project.Root)
			if err := backups.CleanupOldBackups(time.Duration(maxAgeHours) * time.Hour); err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "backup cleanup complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")
	cmd.Flags().IntVar(&maxAgeHours, "max-age-hours", 24, "Delete backups older than this many hours")

	return cmd
}

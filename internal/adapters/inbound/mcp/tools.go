package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/storyforge/storyforge/internal/adapters/outbound/backup"
	configloader "github.com/storyforge/storyforge/internal/adapters/outbound/config"
	"github.com/storyforge/storyforge/internal/adapters/outbound/gitinfo"
	"github.com/storyforge/storyforge/internal/adapters/outbound/history"
	"github.com/storyforge/storyforge/internal/adapters/outbound/llm"
	"github.com/storyforge/storyforge/internal/adapters/outbound/modifier"
	"github.com/storyforge/storyforge/internal/adapters/outbound/parser"
	"github.com/storyforge/storyforge/internal/adapters/outbound/reporter"
	"github.com/storyforge/storyforge/internal/adapters/outbound/safety"
	"github.com/storyforge/storyforge/internal/adapters/outbound/sprint"
	"github.com/storyforge/storyforge/internal/adapters/outbound/strategies"
	"github.com/storyforge/storyforge/internal/adapters/outbound/testrunner"
	"github.com/storyforge/storyforge/internal/application"
	"github.com/storyforge/storyforge/internal/domain"
)

// registerTools registers all storyforge MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. storyforge_status
	s.AddTool(
		mcplib.NewTool("storyforge_status",
			mcplib.WithDescription("Returns the sprint status with story counts by workflow state"),
		),
		handleStatus(projectPath),
	)

	// 2. storyforge_next
	s.AddTool(
		mcplib.NewTool("storyforge_next",
			mcplib.WithDescription("Returns next actionable stories grouped by phase (backlog, ready-for-dev, in-progress, review)"),
		),
		handleNext(projectPath),
	)

	// 3. storyforge_create_story
	s.AddTool(
		mcplib.NewTool("storyforge_create_story",
			mcplib.WithDescription("Generate a story implementation guide from the epics file and mark it ready-for-dev"),
			mcplib.WithString("story_key",
				mcplib.Required(),
				mcplib.Description("Story key in format N-N-slug (e.g. 0-1-homepage); a free-text title portion is slug-normalized"),
			),
		),
		handleCreateStory(projectPath),
	)

	// 4. storyforge_develop_story
	s.AddTool(
		mcplib.NewTool("storyforge_develop_story",
			mcplib.WithDescription("Return a story's content with implementation instructions and mark it in-progress"),
			mcplib.WithString("story_key",
				mcplib.Required(),
				mcplib.Description("Story key to develop"),
			),
		),
		handleDevelopStory(projectPath),
	)

	// 5. storyforge_review_story
	s.AddTool(
		mcplib.NewTool("storyforge_review_story",
			mcplib.WithDescription("Run adversarial code review on a story's changes: diffs against the base branch, reviews via the model, and returns structured issues"),
			mcplib.WithString("story_key",
				mcplib.Required(),
				mcplib.Description("Story key to review"),
			),
			mcplib.WithString("base_branch",
				mcplib.Description("Base branch to diff against (auto-detected when omitted)"),
			),
		),
		handleReviewStory(projectPath),
	)

	// 6. storyforge_update_status
	s.AddTool(
		mcplib.NewTool("storyforge_update_status",
			mcplib.WithDescription("Update a story's status in the sprint status store"),
			mcplib.WithString("story_key",
				mcplib.Required(),
				mcplib.Description("Story key to update"),
			),
			mcplib.WithString("status",
				mcplib.Required(),
				mcplib.Description(fmt.Sprintf("New status, one of: %v", domain.ValidStatuses)),
			),
		),
		handleUpdateStatus(projectPath),
	)

	// 7. storyforge_run_epic
	s.AddTool(
		mcplib.NewTool("storyforge_run_epic",
			mcplib.WithDescription("Return an orchestration plan for a full epic: its stories, their statuses, and recommended next actions"),
			mcplib.WithNumber("epic_number",
				mcplib.Required(),
				mcplib.Description("Epic number to plan (e.g. 0, 1, 2)"),
			),
		),
		handleRunEpic(projectPath),
	)

	// 8. storyforge_auto_fix
	s.AddTool(
		mcplib.NewTool("storyforge_auto_fix",
			mcplib.WithDescription("Parse a story's saved review into issues and apply safe automated fixes with backup and rollback; always writes a report artifact"),
			mcplib.WithString("story_key",
				mcplib.Required(),
				mcplib.Description("Story key whose review to remediate"),
			),
			mcplib.WithBoolean("dry_run",
				mcplib.Description("Report intended changes without mutating files"),
			),
			mcplib.WithBoolean("auto_only",
				mcplib.Description("Only process issues classified as auto-fixable"),
			),
		),
		handleAutoFix(projectPath),
	)
}

func handleStatus(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		_, store, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		summary, err := store.StatusSummary()
		if err != nil {
			return errorResult(fmt.Sprintf("status failed: %v", err)), nil
		}
		return jsonResult(summary)
	}
}

func handleNext(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		_, store, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		stories := application.NewStoryService(llm.New(), store)
		actions, err := stories.NextActions()
		if err != nil {
			return errorResult(fmt.Sprintf("next failed: %v", err)), nil
		}
		return jsonResult(actions)
	}
}

func handleCreateStory(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		storyKey, err := request.RequireString("story_key")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		storyKey = domain.NormalizeStoryKey(storyKey)

		project, store, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		stories := application.NewStoryService(llm.New(), store)
		storyFile, err := stories.CreateStory(ctx, project, storyKey)
		if err != nil {
			return errorResult(fmt.Sprintf("create failed: %v", err)), nil
		}
		return jsonResult(map[string]string{"story_key": storyKey, "story_file": storyFile})
	}
}

func handleDevelopStory(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		storyKey, err := request.RequireString("story_key")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		project, store, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		stories := application.NewStoryService(llm.New(), store)
		content, err := stories.DevelopStory(ctx, project, storyKey)
		if err != nil {
			return errorResult(fmt.Sprintf("develop failed: %v", err)), nil
		}
		return jsonResult(map[string]string{"story_key": storyKey, "content": content})
	}
}

func handleReviewStory(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		storyKey, err := request.RequireString("story_key")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		baseBranch := request.GetString("base_branch", "")

		project, _, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		reviews := application.NewReviewService(llm.New(), gitinfo.New(), parser.New())
		outcome, err := reviews.ReviewStory(ctx, project, storyKey, baseBranch)
		if err != nil {
			return errorResult(fmt.Sprintf("review failed: %v", err)), nil
		}
		return jsonResult(outcome)
	}
}

func handleUpdateStatus(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		storyKey, err := request.RequireString("story_key")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		status, err := request.RequireString("status")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		_, store, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		if err := store.UpdateStoryStatus(ctx, storyKey, domain.Status(status)); err != nil {
			return errorResult(fmt.Sprintf("update failed: %v", err)), nil
		}
		return jsonResult(map[string]string{"story_key": storyKey, "status": status})
	}
}

func handleRunEpic(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		epic, err := request.RequireInt("epic_number")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		_, store, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		stories := application.NewStoryService(llm.New(), store)
		plan, err := stories.PlanEpic(epic)
		if err != nil {
			return errorResult(fmt.Sprintf("epic plan failed: %v", err)), nil
		}
		return jsonResult(plan)
	}
}

func handleAutoFix(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		storyKey, err := request.RequireString("story_key")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		project, store, err := projectStore(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		cfg, err := configloader.New().Load(project.Root)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		backups := backup.New(project.Root)
		files, err := modifier.New(project.Root, backups)
		if err != nil {
			return errorResult(fmt.Sprintf("preparing file access: %v", err)), nil
		}

		svc := application.NewAutoFixService(
			parser.New(),
			safety.New(project.Root),
			store,
			testrunner.New(project.Root, time.Duration(cfg.Safety.TimeoutSeconds)*time.Second),
			reporter.New(),
			cfg,
		).
			WithStrategies(strategies.NewFormattingStrategy(files)).
			WithBackups(backups).
			WithHistory(history.New()).
			WithGit(gitinfo.New())

		run, err := svc.Run(ctx, project, storyKey, application.AutoFixOptions{
			DryRun:       request.GetBool("dry_run", false),
			AutoOnly:     request.GetBool("auto_only", false),
			UpdateStatus: true,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("auto-fix failed: %v", err)), nil
		}
		return jsonResult(run)
	}
}

// projectStore resolves the project layout and its status store.
func projectStore(projectPath string) (*domain.ProjectPaths, *sprint.Store, error) {
	project, err := domain.ResolveProject(projectPath)
	if err != nil {
		return nil, nil, err
	}
	return project, sprint.New(project.SprintStatusFile), nil
}

// jsonResult marshals v into a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool error with a plain text message.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}

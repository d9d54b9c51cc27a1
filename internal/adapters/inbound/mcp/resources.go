package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/storyforge/storyforge/internal/domain"
)

// registerResources registers all storyforge MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. storyforge://status - sprint status summary
	s.AddResource(
		mcplib.NewResource(
			"storyforge://status",
			"Sprint Status",
			mcplib.WithResourceDescription("Story counts by workflow state for the current sprint"),
			mcplib.WithMIMEType("application/json"),
		),
		handleStatusResource(projectPath),
	)

	// 2. storyforge://epics - the epics breakdown document
	s.AddResource(
		mcplib.NewResource(
			"storyforge://epics",
			"Epics",
			mcplib.WithResourceDescription("The project's epic and story breakdown document"),
			mcplib.WithMIMEType("text/markdown"),
		),
		handleEpicsResource(projectPath),
	)

	// 3. storyforge://stories/{key} - a single story file (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"storyforge://stories/{key}",
			"Story",
			mcplib.WithTemplateDescription("Implementation guide for a specific story"),
			mcplib.WithTemplateMIMEType("text/markdown"),
		),
		handleStoryResource(projectPath),
	)

	// 4. storyforge://reviews/{key} - a saved review artifact (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"storyforge://reviews/{key}",
			"Review",
			mcplib.WithTemplateDescription("Saved code review artifact for a specific story"),
			mcplib.WithTemplateMIMEType("text/markdown"),
		),
		handleReviewResource(projectPath),
	)
}

func handleStatusResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		_, store, err := projectStore(projectPath)
		if err != nil {
			return nil, err
		}

		summary, err := store.StatusSummary()
		if err != nil {
			return nil, fmt.Errorf("status failed: %w", err)
		}

		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling status: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "storyforge://status",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleEpicsResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		project, err := domain.ResolveProject(projectPath)
		if err != nil {
			return nil, err
		}

		content, err := os.ReadFile(project.EpicsFile)
		if err != nil {
			return nil, fmt.Errorf("reading epics: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "storyforge://epics",
				MIMEType: "text/markdown",
				Text:     string(content),
			},
		}, nil
	}
}

func handleStoryResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		// Extract the story key from the arguments (populated by template matching)
		storyKey, ok := request.Params.Arguments["key"].(string)
		if !ok || storyKey == "" {
			return nil, fmt.Errorf("story key is required")
		}
		if err := domain.ValidateStoryKey(storyKey); err != nil {
			return nil, err
		}

		project, err := domain.ResolveProject(projectPath)
		if err != nil {
			return nil, err
		}

		content, err := os.ReadFile(project.StoryFile(storyKey))
		if err != nil {
			return nil, fmt.Errorf("reading story: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/markdown",
				Text:     string(content),
			},
		}, nil
	}
}

func handleReviewResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		storyKey, ok := request.Params.Arguments["key"].(string)
		if !ok || storyKey == "" {
			return nil, fmt.Errorf("story key is required")
		}
		if err := domain.ValidateStoryKey(storyKey); err != nil {
			return nil, err
		}

		project, err := domain.ResolveProject(projectPath)
		if err != nil {
			return nil, err
		}

		content, err := os.ReadFile(project.ReviewFile(storyKey))
		if err != nil {
			return nil, fmt.Errorf("reading review: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/markdown",
				Text:     string(content),
			},
		}, nil
	}
}

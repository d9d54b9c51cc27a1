package application

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/storyforge/storyforge/internal/domain"
)

const createStorySystemPrompt = `You are a story creator for an AI-assisted development workflow. Your job is to create comprehensive developer implementation guides.

Given the sprint status and epics file, create a complete story file for the specified story key.

The story file MUST include:
1. Story header with title and status (ready-for-dev)
2. User story (As a... I want... So that...)
3. Acceptance Criteria in BDD format (Given/When/Then)
4. Detailed Tasks with checkboxes broken into subtasks
5. Technical requirements and file structure
6. Testing requirements

Output ONLY the markdown content for the story file. No explanations or preamble.`

// StoryService creates and develops stories and answers aggregate workflow
// questions (status summary, next actions, epic plans).
type StoryService struct {
	llm   domain.LLMClient
	store domain.StatusStore
}

// NewStoryService wires the story workflow.
func NewStoryService(llm domain.LLMClient, store domain.StatusStore) *StoryService {
	return &StoryService{llm: llm, store: store}
}

// CreateStory generates a story implementation guide from the epics file,
// saves it to the stories directory, and moves the story to ready-for-dev.
// The key's title portion is slug-normalized first, so "1-2-Login Flow" and
// "1-2-login-flow" name the same story.
func (s *StoryService) CreateStory(ctx context.Context, project *domain.ProjectPaths, storyKey string) (string, error) {
	storyKey = domain.NormalizeStoryKey(storyKey)
	if err := domain.ValidateStoryKey(storyKey); err != nil {
		return "", err
	}

	promptContext, err := s.buildContext(project)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf("Create a comprehensive story file for %s based on the context provided.\n\n%s", storyKey, promptContext)
	content, err := s.llm.Complete(ctx, createStorySystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generating story: %w", err)
	}

	storyFile := project.StoryFile(storyKey)
	if err := os.WriteFile(storyFile, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("saving story: %w", err)
	}

	if err := s.store.UpdateStoryStatus(ctx, storyKey, domain.StatusReadyForDev); err != nil {
		return storyFile, fmt.Errorf("story saved but status update failed: %w", err)
	}
	return storyFile, nil
}

// DevelopStory returns the story content for implementation and moves the
// story to in-progress.
func (s *StoryService) DevelopStory(ctx context.Context, project *domain.ProjectPaths, storyKey string) (string, error) {
	if err := domain.ValidateStoryKey(storyKey); err != nil {
		return "", err
	}

	data, err := os.ReadFile(project.StoryFile(storyKey))
	if err != nil {
		return "", fmt.Errorf("story file not found for %s: %w", storyKey, err)
	}

	if err := s.store.UpdateStoryStatus(ctx, storyKey, domain.StatusInProgress); err != nil {
		return "", err
	}
	return string(data), nil
}

// NextActions groups actionable stories by workflow phase.
func (s *StoryService) NextActions() (map[domain.Status][]string, error) {
	actions := make(map[domain.Status][]string)
	for _, status := range []domain.Status{
		domain.StatusBacklog,
		domain.StatusReadyForDev,
		domain.StatusInProgress,
		domain.StatusReview,
	} {
		stories, err := s.store.StoriesByStatus(status)
		if err != nil {
			return nil, err
		}
		if len(stories) > 0 {
			actions[status] = stories
		}
	}
	return actions, nil
}

// EpicPlan describes one epic's stories and the recommended next steps.
type EpicPlan struct {
	Epic            int                      `json:"epic"`
	Stories         map[string]domain.Status `json:"stories"`
	Recommendations []string                 `json:"recommendations"`
}

// PlanEpic returns an orchestration plan for a full epic.
func (s *StoryService) PlanEpic(epic int) (*EpicPlan, error) {
	stories, err := s.store.StoriesForEpic(epic)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(stories))
	for key := range stories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	plan := &EpicPlan{Epic: epic, Stories: stories}
	for _, key := range keys {
		switch stories[key] {
		case domain.StatusBacklog:
			plan.Recommendations = append(plan.Recommendations, fmt.Sprintf("create story %s", key))
		case domain.StatusReadyForDev, domain.StatusPlanning:
			plan.Recommendations = append(plan.Recommendations, fmt.Sprintf("develop story %s", key))
		case domain.StatusExecuting, domain.StatusInProgress:
			plan.Recommendations = append(plan.Recommendations, fmt.Sprintf("finish and review story %s", key))
		case domain.StatusReview:
			plan.Recommendations = append(plan.Recommendations, fmt.Sprintf("run adversarial review on %s", key))
		}
	}
	return plan, nil
}

// buildContext concatenates the project documents the model needs to write a
// grounded story.
func (s *StoryService) buildContext(project *domain.ProjectPaths) (string, error) {
	var parts []string

	sprintStatus, err := os.ReadFile(project.SprintStatusFile)
	if err != nil {
		return "", fmt.Errorf("reading sprint status: %w", err)
	}
	parts = append(parts, "=== SPRINT STATUS ===", string(sprintStatus), "")

	epics, err := os.ReadFile(project.EpicsFile)
	if err != nil {
		return "", fmt.Errorf("reading epics: %w", err)
	}
	parts = append(parts, "=== EPICS ===", string(epics), "")

	if project.ArchitectureFile != "" {
		if arch, err := os.ReadFile(project.ArchitectureFile); err == nil {
			parts = append(parts, "=== ARCHITECTURE ===", string(arch), "")
		}
	}

	return strings.Join(parts, "\n"), nil
}

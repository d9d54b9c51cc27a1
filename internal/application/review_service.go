package application

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/storyforge/storyforge/internal/domain"
)

const reviewSystemPrompt = `You are an ADVERSARIAL Senior Developer performing code review.

CRITICAL: You are reviewing the CODE CHANGES section (git diff), NOT the story requirements.
The story requirements are provided only for context about what SHOULD have been implemented.

Your job is to find 3-10 specific issues in the ACTUAL CODE that was written (shown in the diff).
You MUST find issues - 'looks good' is NOT acceptable.

Review the CODE CHANGES for:
1. Code quality and patterns
2. Test coverage gaps
3. Security issues (injection, XSS, auth bypasses)
4. Performance concerns
5. Whether the implementation satisfies acceptance criteria

For each issue found:
- Describe the problem specifically
- Reference the ACTUAL file and line FROM THE DIFF
- Suggest the fix
- Rate severity: CRITICAL, HIGH, MEDIUM, LOW

IMPORTANT: Only reference files that appear in the CODE CHANGES diff.
Do NOT critique the story markdown or reference proposed files that weren't implemented.

Output a structured review report in markdown format.`

// ReviewOutcome is the result of one adversarial review.
type ReviewOutcome struct {
	StoryKey       string         `json:"story_key"`
	Review         string         `json:"review"`
	ReviewPath     string         `json:"review_path"`
	Issues         []domain.Issue `json:"issues"`
	HasCritical    bool           `json:"has_critical_issues"`
	Recommendation domain.Status  `json:"recommendation"`
}

// ReviewService runs adversarial code reviews: it gathers the story and the
// git diff, asks the model for a review, persists it, and parses it into
// structured issues.
type ReviewService struct {
	llm    domain.LLMClient
	git    domain.GitInfo
	parser domain.ReviewParser
}

// NewReviewService wires the review pipeline.
func NewReviewService(llm domain.LLMClient, git domain.GitInfo, parser domain.ReviewParser) *ReviewService {
	return &ReviewService{llm: llm, git: git, parser: parser}
}

// ReviewStory reviews a story's code changes against a base branch. An empty
// baseBranch auto-detects the repository's default branch. The review text is
// saved beside the story before parsing so the operator keeps the raw output
// even if extraction finds nothing.
func (s *ReviewService) ReviewStory(ctx context.Context, project *domain.ProjectPaths, storyKey, baseBranch string) (*ReviewOutcome, error) {
	if err := domain.ValidateStoryKey(storyKey); err != nil {
		return nil, err
	}

	storyContent := ""
	if data, err := os.ReadFile(project.StoryFile(storyKey)); err == nil {
		storyContent = string(data)
	}

	if baseBranch == "" {
		baseBranch = s.git.DefaultBranch(ctx, project.Root)
	}
	diff, err := s.git.Diff(ctx, project.Root, baseBranch)
	if err != nil {
		return nil, fmt.Errorf("getting diff for review: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		diff = "No code changes found (only documentation/config changes)"
	}

	prompt := fmt.Sprintf(`Perform adversarial code review for story: %s

=== STORY REQUIREMENTS ===
%s

=== CODE CHANGES ===
%s`, storyKey, storyContent, diff)

	review, err := s.llm.Complete(ctx, reviewSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("review failed: %w", err)
	}

	reviewPath, err := s.saveReview(project, storyKey, review)
	if err != nil {
		return nil, err
	}

	issues := s.parser.Parse(review)
	hasCritical := false
	for _, issue := range issues {
		if issue.Severity == domain.SeverityCritical || issue.Severity == domain.SeverityHigh {
			hasCritical = true
			break
		}
	}

	recommendation := domain.StatusDone
	if hasCritical {
		recommendation = domain.StatusInProgress
	}

	return &ReviewOutcome{
		StoryKey:       storyKey,
		Review:         review,
		ReviewPath:     reviewPath,
		Issues:         issues,
		HasCritical:    hasCritical,
		Recommendation: recommendation,
	}, nil
}

func (s *ReviewService) saveReview(project *domain.ProjectPaths, storyKey, review string) (string, error) {
	if err := os.MkdirAll(project.ReviewsDir(), 0755); err != nil {
		return "", fmt.Errorf("creating reviews dir: %w", err)
	}
	path := project.ReviewFile(storyKey)
	if err := os.WriteFile(path, []byte(review), 0644); err != nil {
		return "", fmt.Errorf("saving review: %w", err)
	}
	return path, nil
}

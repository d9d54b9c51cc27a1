package tui_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storyforge/storyforge/internal/adapters/outbound/tui"
	"github.com/storyforge/storyforge/internal/application"
	"github.com/storyforge/storyforge/internal/domain"
)

func TestRenderStatusSummary(t *testing.T) {
	out := tui.RenderStatusSummary(map[domain.Status]int{
		domain.StatusDone:       3,
		domain.StatusBacklog:    2,
		domain.StatusInProgress: 1,
	})

	assert.Contains(t, out, "done")
	assert.Contains(t, out, "backlog")
	assert.Contains(t, out, "in-progress")
	assert.Contains(t, out, "6 stories")
}

func TestRenderStatusSummary_UnknownStatusFlagged(t *testing.T) {
	out := tui.RenderStatusSummary(map[domain.Status]int{
		"mystery": 1,
	})

	assert.Contains(t, out, "mystery?")
}

func TestRenderFixRun(t *testing.T) {
	run := &application.AutoFixRun{
		Report: domain.AutoFixReport{
			StoryKey: "1-2-login",
			Results: []domain.FixResult{
				{
					Issue:   domain.Issue{Severity: domain.SeverityLow, Problem: "Trailing whitespace", File: "src/utils.py"},
					Status:  domain.FixStatusSuccess,
					Changes: []string{"Formatted src/utils.py with black"},
				},
				{
					Issue:        domain.Issue{Severity: domain.SeverityCritical, Problem: "SQL injection", File: "src/db.py"},
					Status:       domain.FixStatusSkipped,
					ErrorMessage: "No fix strategy available for this issue type",
				},
			},
		},
		ReportPath: "/proj/docs/sprint-artifacts/auto-fix-report.md",
		Validation: domain.ValidationPassed,
	}

	out := tui.RenderFixRun(run)

	assert.Contains(t, out, "1-2-login")
	assert.Contains(t, out, "Trailing whitespace")
	assert.Contains(t, out, "SQL injection")
	assert.Contains(t, out, "auto-fix-report.md")
	assert.Contains(t, out, "tests: passed")
}

package reporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/storyforge/storyforge/internal/domain"
)

// FileName is the report artifact written after every remediation run.
const FileName = "auto-fix-report.md"

// Generator renders AutoFixReport aggregates as a markdown artifact. Every
// run produces a report, even when all issues failed, so the operator always
// has actionable output.
type Generator struct{}

// New creates a Generator.
func New() *Generator { return &Generator{} }

// Generate renders the full markdown report.
func (g *Generator) Generate(report domain.AutoFixReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Auto-Fix Report: %s\n\n", report.StoryKey)
	b.WriteString("## Summary\n")
	if report.Commit != "" {
		fmt.Fprintf(&b, "- **Commit:** `%s`\n", report.Commit)
	}
	fmt.Fprintf(&b, "- **Total Issues:** %d\n", report.TotalIssues())
	fmt.Fprintf(&b, "- **Fixed:** %d\n", report.FixedCount())
	fmt.Fprintf(&b, "- **Failed:** %d\n", report.FailedCount())
	fmt.Fprintf(&b, "- **Skipped:** %d\n", report.SkippedCount())
	if n := report.DryRunCount(); n > 0 {
		fmt.Fprintf(&b, "- **Dry Run:** %d\n", n)
	}
	fmt.Fprintf(&b, "- **Success Rate:** %.1f%%\n", report.FixRate()*100)
	b.WriteString("\n## Fix Details\n\n")

	if len(report.Results) == 0 {
		b.WriteString("_No issues processed._\n")
		return b.String()
	}

	for _, result := range report.Results {
		// Escape the problem text so review prose cannot inject markup.
		fmt.Fprintf(&b, "### %s %s: %s\n", statusIcon(result.Status), strings.ToUpper(string(result.Status)), html.EscapeString(result.Issue.Problem))
		fmt.Fprintf(&b, "**File:** `%s`\n", result.Issue.File)
		fmt.Fprintf(&b, "**Severity:** %s\n", result.Issue.Severity)

		if result.ErrorMessage != "" {
			fmt.Fprintf(&b, "**Error:** `%s`\n", result.ErrorMessage)
		}
		if len(result.Changes) > 0 {
			b.WriteString("**Changes:**\n")
			for _, change := range result.Changes {
				fmt.Fprintf(&b, "- %s\n", change)
			}
		}
		b.WriteString("---\n")
	}

	b.WriteString("\n## Remaining Manual Issues\n")
	var unresolved []domain.FixResult
	for _, r := range report.Results {
		if r.Status != domain.FixStatusSuccess {
			unresolved = append(unresolved, r)
		}
	}
	if len(unresolved) == 0 {
		b.WriteString("All identified issues were resolved.\n")
	} else {
		for _, r := range unresolved {
			fmt.Fprintf(&b, "- [%s] %s (%s)\n", r.Issue.Severity, r.Issue.Problem, r.Issue.File)
		}
	}

	return b.String()
}

// Save writes the report into outputDir and returns the artifact path.
func (g *Generator) Save(report domain.AutoFixReport, outputDir string) (string, error) {
	path := filepath.Join(outputDir, FileName)
	if err := os.WriteFile(path, []byte(g.Generate(report)), 0644); err != nil {
		return "", fmt.Errorf("saving report: %w", err)
	}
	return path, nil
}

func statusIcon(status domain.FixStatus) string {
	switch status {
	case domain.FixStatusSuccess:
		return "✅"
	case domain.FixStatusFailed:
		return "❌"
	default:
		return "⚠️"
	}
}

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/storyforge/storyforge/internal/application"
	"github.com/storyforge/storyforge/internal/domain"
)

// ── warm terminal palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(60)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	separatorLine = faintStyle.Render(strings.Repeat("─", 56))
)

var statusStyles = map[domain.Status]lipgloss.Style{
	domain.StatusBacklog:     dimStyle,
	domain.StatusReadyForDev: warnStyle,
	domain.StatusPlanning:    warnStyle,
	domain.StatusExecuting:   warnStyle,
	domain.StatusInProgress:  warnStyle,
	domain.StatusReview:      titleStyle,
	domain.StatusDone:        passStyle,
	domain.StatusBlocked:     failStyle,
}

// RenderFixRun renders one remediation run's summary and per-issue outcomes.
func RenderFixRun(run *application.AutoFixRun) string {
	var b strings.Builder

	report := run.Report
	title := headerStyle.Render("storyforge")
	subtitle := dimStyle.Render("Auto-Fix Report · " + report.StoryKey)
	rate := fmt.Sprintf("%.0f%% fixed", report.FixRate()*100)

	summary := fmt.Sprintf("%d issues · %s · %s · %s",
		report.TotalIssues(),
		passStyle.Render(fmt.Sprintf("%d fixed", report.FixedCount())),
		failStyle.Render(fmt.Sprintf("%d failed", report.FailedCount())),
		dimStyle.Render(fmt.Sprintf("%d skipped", report.SkippedCount())),
	)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + titleStyle.Render(rate)))
	b.WriteString("\n\n")
	b.WriteString(summary)
	b.WriteString("\n")
	b.WriteString(separatorLine)
	b.WriteString("\n")

	for _, result := range report.Results {
		b.WriteString(renderResult(result))
	}

	b.WriteString(separatorLine)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("report: " + run.ReportPath))
	b.WriteString("\n")
	b.WriteString(renderValidation(run.Validation))
	b.WriteString("\n")

	return b.String()
}

func renderResult(result domain.FixResult) string {
	var tag string
	switch result.Status {
	case domain.FixStatusSuccess:
		tag = passStyle.Render("fixed  ")
	case domain.FixStatusFailed:
		tag = failStyle.Render("failed ")
	case domain.FixStatusDryRun:
		tag = warnStyle.Render("dry-run")
	default:
		tag = dimStyle.Render("skipped")
	}

	line := fmt.Sprintf("  %s  [%s] %s", tag, result.Issue.Severity, result.Issue.Problem)
	if result.Issue.File != "" {
		line += "  " + fileStyle.Render(result.Issue.File)
	}
	line += "\n"

	if result.ErrorMessage != "" {
		line += "           " + failStyle.Render(result.ErrorMessage) + "\n"
	}
	for _, change := range result.Changes {
		line += "           " + dimStyle.Render(change) + "\n"
	}
	return line
}

func renderValidation(outcome domain.ValidationOutcome) string {
	switch outcome {
	case domain.ValidationPassed:
		return passStyle.Render("tests: passed")
	case domain.ValidationFailed:
		return failStyle.Render("tests: FAILED")
	case domain.ValidationTimedOut:
		return failStyle.Render("tests: timed out")
	default:
		return dimStyle.Render("tests: not validated")
	}
}

// RenderStatusSummary renders story counts grouped by workflow status.
func RenderStatusSummary(summary map[domain.Status]int) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("sprint status"))
	b.WriteString("\n")
	b.WriteString(separatorLine)
	b.WriteString("\n")

	total := 0
	for _, status := range domain.ValidStatuses {
		count, ok := summary[status]
		if !ok {
			continue
		}
		total += count
		style, found := statusStyles[status]
		if !found {
			style = dimStyle
		}
		fmt.Fprintf(&b, "  %s %d\n", style.Render(fmt.Sprintf("%-14s", status)), count)
	}

	// Statuses outside the known set still show up rather than vanishing.
	var unknown []string
	for status := range summary {
		if !domain.IsValidStatus(status) {
			unknown = append(unknown, string(status))
		}
	}
	sort.Strings(unknown)
	for _, status := range unknown {
		fmt.Fprintf(&b, "  %s %d\n", failStyle.Render(fmt.Sprintf("%-14s", status+"?")), summary[domain.Status(status)])
	}

	b.WriteString(separatorLine)
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("%d stories", total)))

	return b.String()
}

package domain

import "time"

// Severity classifies how serious a review issue is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities lists all severities in descending order of urgency.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// FixType classifies how an issue can be remediated.
type FixType string

const (
	FixTypeAuto     FixType = "auto"
	FixTypeSemiAuto FixType = "semi-auto"
	FixTypeManual   FixType = "manual"
)

// FixStatus is the outcome of one remediation attempt.
type FixStatus string

const (
	FixStatusSuccess FixStatus = "success"
	FixStatusFailed  FixStatus = "failed"
	FixStatusSkipped FixStatus = "skipped"
	FixStatusDryRun  FixStatus = "dry_run"
)

// Issue represents a single problem extracted from review text.
// An Issue is immutable once constructed; its FixType is derived at parse
// time from keyword matching and never re-derived later.
type Issue struct {
	Severity     Severity `json:"severity"`
	Problem      string   `json:"problem"`
	File         string   `json:"file,omitempty"`
	Line         int      `json:"line,omitempty"`
	FixType      FixType  `json:"fix_type"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
	FullContext  string   `json:"full_context,omitempty"`
}

// IsAutoFixable reports whether the issue was classified as auto-fixable.
func (i Issue) IsAutoFixable() bool {
	return i.FixType == FixTypeAuto
}

// FixResult is the outcome of attempting to remediate one Issue.
type FixResult struct {
	Issue        Issue     `json:"issue"`
	Status       FixStatus `json:"status"`
	Changes      []string  `json:"changes,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// AutoFixReport aggregates the results of one remediation run for one story.
// All counts are derived from Results, never stored.
type AutoFixReport struct {
	StoryKey string      `json:"story_key"`
	Commit   string      `json:"commit,omitempty"`
	Results  []FixResult `json:"results"`
}

// TotalIssues is the number of issues processed.
func (r AutoFixReport) TotalIssues() int { return len(r.Results) }

// FixedCount is the number of successfully fixed issues.
func (r AutoFixReport) FixedCount() int { return r.countStatus(FixStatusSuccess) }

// FailedCount is the number of failed fix attempts.
func (r AutoFixReport) FailedCount() int { return r.countStatus(FixStatusFailed) }

// SkippedCount is the number of issues no strategy could handle.
func (r AutoFixReport) SkippedCount() int { return r.countStatus(FixStatusSkipped) }

// DryRunCount is the number of issues that would have been fixed in dry-run mode.
func (r AutoFixReport) DryRunCount() int { return r.countStatus(FixStatusDryRun) }

// FixRate is the ratio of successful (or would-be successful) fixes to total
// issues. Returns 0.0 when no issues were processed.
func (r AutoFixReport) FixRate() float64 {
	if len(r.Results) == 0 {
		return 0.0
	}
	fixable := r.FixedCount() + r.DryRunCount()
	return float64(fixable) / float64(len(r.Results))
}

func (r AutoFixReport) countStatus(status FixStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// RunEntry is one remediation run as recorded in the project's run history.
type RunEntry struct {
	StoryKey  string    `json:"story_key"`
	Timestamp time.Time `json:"timestamp"`
	DryRun    bool      `json:"dry_run"`
	Total     int       `json:"total"`
	Fixed     int       `json:"fixed"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	FixRate   float64   `json:"fix_rate"`
}

// NewRunEntry snapshots a report into a history entry.
func NewRunEntry(report AutoFixReport, dryRun bool, at time.Time) RunEntry {
	return RunEntry{
		StoryKey:  report.StoryKey,
		Timestamp: at,
		DryRun:    dryRun,
		Total:     report.TotalIssues(),
		Fixed:     report.FixedCount() + report.DryRunCount(),
		Failed:    report.FailedCount(),
		Skipped:   report.SkippedCount(),
		FixRate:   report.FixRate(),
	}
}

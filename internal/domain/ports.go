package domain

import (
	"context"
	"time"
)

// FixStrategy is a pluggable remediation handler. Strategies are registered
// in order; the first one whose CanFix returns true handles the issue.
type FixStrategy interface {
	// Name identifies the strategy for config lookups and change reports.
	Name() string
	// CanFix reports whether this strategy can remediate the issue.
	CanFix(issue Issue) bool
	// ApplyFix attempts the remediation. In dry-run mode it must not mutate
	// any file. Errors are reported through the FixResult, not returned.
	ApplyFix(ctx context.Context, issue Issue, projectRoot string, dryRun bool) FixResult
}

// StatusStore persists the story key → workflow status mapping.
type StatusStore interface {
	UpdateStoryStatus(ctx context.Context, storyKey string, status Status) error
	StoriesByStatus(status Status) ([]string, error)
	NextStory(status Status) (string, error)
	StoriesForEpic(epic int) (map[string]Status, error)
	StatusSummary() (map[Status]int, error)
}

// ReviewParser extracts structured issues from free-text review output.
type ReviewParser interface {
	Parse(text string) []Issue
	ParseFile(path string) ([]Issue, error)
}

// SafetyChecker runs advisory pre-flight checks before destructive
// operations.
type SafetyChecker interface {
	CheckCleanWorkingTree() bool
	ValidateFileSize(path string, maxKB int) bool
}

// LLMClient is the opaque text-in/text-out language model service.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// ValidationOutcome is the result of running the project's test suite.
type ValidationOutcome string

const (
	// ValidationPassed means the test runner exited zero.
	ValidationPassed ValidationOutcome = "passed"
	// ValidationFailed means the test runner exited nonzero.
	ValidationFailed ValidationOutcome = "failed"
	// ValidationTimedOut means the test runner was killed on timeout.
	ValidationTimedOut ValidationOutcome = "timed_out"
	// ValidationUnavailable means no test runner could be detected or
	// launched; the batch is "not validated", distinct from a failure.
	ValidationUnavailable ValidationOutcome = "unavailable"
)

// TestValidator confirms a fix batch did not regress project behavior.
type TestValidator interface {
	RunTests(ctx context.Context, target string) ValidationOutcome
}

// ReportWriter persists a remediation report artifact and returns its path.
type ReportWriter interface {
	Save(report AutoFixReport, outputDir string) (string, error)
}

// BackupSweeper deletes expired backup files left behind by earlier runs.
type BackupSweeper interface {
	CleanupOldBackups(maxAge time.Duration) error
}

// RunHistory persists a log of past remediation runs per project.
type RunHistory interface {
	Save(projectRoot string, entry RunEntry) error
	Load(projectRoot string) ([]RunEntry, error)
}

// GitInfo answers version-control questions about a project.
type GitInfo interface {
	IsRepo(projectRoot string) bool
	CommitHash(projectRoot string) (string, error)
	DefaultBranch(ctx context.Context, projectRoot string) string
	Diff(ctx context.Context, projectRoot, baseBranch string) (string, error)
}

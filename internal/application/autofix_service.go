package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/storyforge/storyforge/internal/domain"
)

// AutoFixOptions tunes one remediation run.
type AutoFixOptions struct {
	DryRun       bool
	AutoOnly     bool
	UpdateStatus bool
}

// AutoFixRun is the outcome of one remediation run: the aggregate report,
// where the artifact landed, and whether the test suite confirmed the batch.
type AutoFixRun struct {
	Report     domain.AutoFixReport     `json:"report"`
	ReportPath string                   `json:"report_path"`
	Validation domain.ValidationOutcome `json:"validation"`
}

// AutoFixService runs the full remediation pipeline for one story: the
// safety gate, parsing the saved review, the strategy engine, the report
// artifact, test validation, and the final status update. Strategies and
// backup sweeping are injected by the caller, so the service depends only
// on domain ports.
type AutoFixService struct {
	parser     domain.ReviewParser
	guard      domain.SafetyChecker
	store      domain.StatusStore
	validator  domain.TestValidator
	reports    domain.ReportWriter
	config     domain.AutoFixConfig
	strategies []domain.FixStrategy
	backups    domain.BackupSweeper
	history    domain.RunHistory
	git        domain.GitInfo
}

// WithStrategies supplies the fix strategies, in precedence order. Strategies
// disabled in the config are skipped at run time.
func (s *AutoFixService) WithStrategies(strategies ...domain.FixStrategy) *AutoFixService {
	s.strategies = strategies
	return s
}

// WithBackups attaches a backup sweeper; expired backups from this and
// earlier (possibly crashed) runs are swept once per run.
func (s *AutoFixService) WithBackups(b domain.BackupSweeper) *AutoFixService {
	s.backups = b
	return s
}

// WithHistory attaches a run history log. Without one, runs are not recorded.
func (s *AutoFixService) WithHistory(h domain.RunHistory) *AutoFixService {
	s.history = h
	return s
}

// WithGit attaches repository introspection so reports carry the commit they
// were produced against.
func (s *AutoFixService) WithGit(g domain.GitInfo) *AutoFixService {
	s.git = g
	return s
}

// NewAutoFixService wires the remediation pipeline.
func NewAutoFixService(
	parser domain.ReviewParser,
	guard domain.SafetyChecker,
	store domain.StatusStore,
	validator domain.TestValidator,
	reports domain.ReportWriter,
	config domain.AutoFixConfig,
) *AutoFixService {
	return &AutoFixService{
		parser:    parser,
		guard:     guard,
		store:     store,
		validator: validator,
		reports:   reports,
		config:    config,
	}
}

// Run remediates the issues recorded in a story's saved review. The safety
// gate blocks the entire batch before any file is touched; afterwards the
// report artifact is always produced, even when every issue failed.
func (s *AutoFixService) Run(ctx context.Context, project *domain.ProjectPaths, storyKey string, opts AutoFixOptions) (*AutoFixRun, error) {
	if err := domain.ValidateStoryKey(storyKey); err != nil {
		return nil, err
	}
	if !s.config.Enabled {
		return nil, fmt.Errorf("auto-fix is disabled in project config")
	}

	reviewFile := project.ReviewFile(storyKey)
	if _, err := os.Stat(reviewFile); err != nil {
		return nil, fmt.Errorf("no review found for %s: %w", storyKey, err)
	}

	// Safety gate: mutating a dirty tree would make fixes unrecoverable.
	// Dry runs touch nothing, so they may proceed regardless.
	if s.config.Safety.RequireCleanTree && !opts.DryRun && !s.guard.CheckCleanWorkingTree() {
		return nil, domain.ErrDirtyWorkingTree
	}

	issues, err := s.parser.ParseFile(reviewFile)
	if err != nil {
		return nil, err
	}
	if opts.AutoOnly {
		issues = filterAutoFixable(issues)
	}
	// Oversize targets are reported as skipped rather than dropped, so the
	// report stays complete.
	issues, oversize := s.partitionBySize(project, issues)

	engine := s.buildEngine(project.Root, opts.DryRun)
	results := append(engine.FixIssues(ctx, issues), oversize...)

	report := domain.AutoFixReport{StoryKey: storyKey, Results: results}
	if s.git != nil {
		if hash, err := s.git.CommitHash(project.Root); err == nil {
			report.Commit = hash
		}
	}

	// The report artifact is written unconditionally so the operator always
	// has actionable output.
	reportPath, err := s.reports.Save(report, project.StoriesDir)
	if err != nil {
		return nil, err
	}

	run := &AutoFixRun{Report: report, ReportPath: reportPath, Validation: domain.ValidationUnavailable}

	if s.history != nil {
		// Best-effort; a broken history log never fails the run itself.
		_ = s.history.Save(project.Root, domain.NewRunEntry(report, opts.DryRun, time.Now()))
	}

	if !opts.DryRun {
		if report.FixedCount() > 0 {
			run.Validation = s.validator.RunTests(ctx, "")
		}
		if opts.UpdateStatus && run.Validation == domain.ValidationPassed {
			if err := s.store.UpdateStoryStatus(ctx, storyKey, domain.StatusReview); err != nil {
				return run, fmt.Errorf("recording status after fixes: %w", err)
			}
		}
	}

	return run, nil
}

// buildEngine registers the injected strategies that the config enables, in
// the order they were supplied, and sweeps expired backups.
func (s *AutoFixService) buildEngine(projectRoot string, dryRun bool) *FixStrategyEngine {
	engine := NewFixStrategyEngine(projectRoot, dryRun)

	for _, strategy := range s.strategies {
		if s.config.StrategyEnabled(strategy.Name()) {
			engine.RegisterStrategy(strategy)
		}
	}

	if s.backups != nil {
		// Retention is expressed in days.
		retention := time.Duration(s.config.BackupRetentionDays) * 24 * time.Hour
		_ = s.backups.CleanupOldBackups(retention)
	}

	return engine
}

// partitionBySize splits off issues whose target file exceeds the safety
// ceiling, turning each into a skipped result.
func (s *AutoFixService) partitionBySize(project *domain.ProjectPaths, issues []domain.Issue) ([]domain.Issue, []domain.FixResult) {
	kept := issues[:0:0]
	var oversize []domain.FixResult
	for _, issue := range issues {
		target := issue.File
		if target != "" && !filepath.IsAbs(target) {
			target = filepath.Join(project.Root, target)
		}
		if target == "" || s.guard.ValidateFileSize(target, s.config.Safety.MaxFileSizeKB) {
			kept = append(kept, issue)
			continue
		}
		oversize = append(oversize, domain.FixResult{
			Issue:        issue,
			Status:       domain.FixStatusSkipped,
			ErrorMessage: fmt.Sprintf("file exceeds the %d KB size limit", s.config.Safety.MaxFileSizeKB),
		})
	}
	return kept, oversize
}

func filterAutoFixable(issues []domain.Issue) []domain.Issue {
	kept := issues[:0:0]
	for _, issue := range issues {
		if issue.IsAutoFixable() {
			kept = append(kept, issue)
		}
	}
	return kept
}

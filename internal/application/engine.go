package application

import (
	"context"
	"fmt"

	"github.com/storyforge/storyforge/internal/domain"
)

// skippedMessage is emitted when no registered strategy can handle an issue.
const skippedMessage = "No fix strategy available for this issue type"

// FixStrategyEngine applies the first capable strategy to each issue.
// Registration order is the only tie-break rule: strategies are consulted in
// the order they were registered and the first CanFix wins.
type FixStrategyEngine struct {
	projectRoot string
	dryRun      bool
	strategies  []domain.FixStrategy
}

// NewFixStrategyEngine creates an engine for projectRoot. In dry-run mode
// every strategy runs without mutating files.
func NewFixStrategyEngine(projectRoot string, dryRun bool) *FixStrategyEngine {
	return &FixStrategyEngine{projectRoot: projectRoot, dryRun: dryRun}
}

// RegisterStrategy appends a strategy to the registry.
func (e *FixStrategyEngine) RegisterStrategy(s domain.FixStrategy) {
	e.strategies = append(e.strategies, s)
}

// FindStrategy returns the first registered strategy that can fix the issue,
// or nil when none can.
func (e *FixStrategyEngine) FindStrategy(issue domain.Issue) domain.FixStrategy {
	for _, s := range e.strategies {
		if s.CanFix(issue) {
			return s
		}
	}
	return nil
}

// FixIssues processes issues strictly in input order, one at a time; two
// issues may touch the same file, so applications are never overlapped. A
// failing or panicking strategy yields a failed result and the batch
// continues; one bad issue never aborts the run.
func (e *FixStrategyEngine) FixIssues(ctx context.Context, issues []domain.Issue) []domain.FixResult {
	results := make([]domain.FixResult, 0, len(issues))

	for _, issue := range issues {
		strategy := e.FindStrategy(issue)
		if strategy == nil {
			results = append(results, domain.FixResult{
				Issue:        issue,
				Status:       domain.FixStatusSkipped,
				ErrorMessage: skippedMessage,
			})
			continue
		}
		results = append(results, e.apply(ctx, strategy, issue))
	}

	return results
}

// apply shields the batch from a panicking strategy.
func (e *FixStrategyEngine) apply(ctx context.Context, strategy domain.FixStrategy, issue domain.Issue) (result domain.FixResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.FixResult{
				Issue:        issue,
				Status:       domain.FixStatusFailed,
				ErrorMessage: fmt.Sprintf("strategy %s panicked: %v", strategy.Name(), r),
			}
		}
	}()
	return strategy.ApplyFix(ctx, issue, e.projectRoot, e.dryRun)
}

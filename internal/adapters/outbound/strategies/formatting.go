package strategies

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/storyforge/storyforge/internal/adapters/outbound/modifier"
	"github.com/storyforge/storyforge/internal/domain"
)

// formattingKeywords mark an issue as a formatting problem even when the
// parser classified it manual.
var formattingKeywords = []string{
	"format",
	"formatting",
	"black",
	"isort",
	"import order",
	"whitespace",
	"indentation",
	"trailing",
	"style",
	"pep8",
	"pep 8",
}

const defaultToolTimeout = 30 * time.Second

// FormattingStrategy remediates Python formatting issues by running black
// and, when available, isort. File writes by the tools are guarded by a
// backup taken through the shared CodeModifier, so a bad result can always
// be rolled back.
type FormattingStrategy struct {
	files   *modifier.CodeModifier
	timeout time.Duration
}

// NewFormattingStrategy creates the strategy. The CodeModifier provides path
// validation and backup/rollback.
func NewFormattingStrategy(files *modifier.CodeModifier) *FormattingStrategy {
	return &FormattingStrategy{files: files, timeout: defaultToolTimeout}
}

func (s *FormattingStrategy) Name() string { return "formatting" }

// CanFix accepts Python files that were pre-classified auto-fixable or whose
// description mentions a formatting concern.
func (s *FormattingStrategy) CanFix(issue domain.Issue) bool {
	if !strings.HasSuffix(issue.File, ".py") {
		return false
	}
	if issue.FixType == domain.FixTypeAuto {
		return true
	}

	combined := strings.ToLower(issue.Problem + " " + issue.FullContext)
	for _, keyword := range formattingKeywords {
		if strings.Contains(combined, keyword) {
			return true
		}
	}
	return false
}

// ApplyFix formats the file. In dry-run mode it only reports whether black
// would change the file; the content on disk is byte-identical before and
// after the call.
func (s *FormattingStrategy) ApplyFix(ctx context.Context, issue domain.Issue, projectRoot string, dryRun bool) domain.FixResult {
	path := issue.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectRoot, path)
	}

	validated, err := s.files.ValidatePath(path)
	if err != nil {
		return failed(issue, err.Error())
	}
	path = validated

	original, err := os.ReadFile(path)
	if err != nil {
		return failed(issue, fmt.Sprintf("file not found: %s", path))
	}

	if dryRun {
		return s.dryRun(ctx, issue, path)
	}

	if _, err := s.files.Backups().CreateBackup(path); err != nil {
		return failed(issue, fmt.Sprintf("backup failed: %v", err))
	}

	var changes []string

	if err := s.runTool(ctx, "black", path); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return failed(issue, "black not installed")
		}
		return failed(issue, fmt.Sprintf("black: %v", err))
	}
	afterBlack, err := os.ReadFile(path)
	if err != nil {
		return failed(issue, fmt.Sprintf("reading formatted file: %v", err))
	}
	if string(afterBlack) != string(original) {
		changes = append(changes, fmt.Sprintf("Formatted %s with black", filepath.Base(path)))
	}

	// isort is optional; a missing binary is not a failure.
	if err := s.runTool(ctx, "isort", path); err != nil && !errors.Is(err, exec.ErrNotFound) {
		return s.rollbackAndFail(issue, path, fmt.Sprintf("isort: %v", err))
	}
	final, err := os.ReadFile(path)
	if err != nil {
		return failed(issue, fmt.Sprintf("reading formatted file: %v", err))
	}
	if string(final) != string(afterBlack) {
		changes = append(changes, fmt.Sprintf("Sorted imports in %s with isort", filepath.Base(path)))
	}

	// An already-formatted file is a clean no-op, not a failure.
	if string(final) == string(original) {
		s.files.Backups().ClearBackup(path)
		return domain.FixResult{Issue: issue, Status: domain.FixStatusSuccess, Changes: []string{}}
	}

	if !s.syntaxValid(ctx, path) {
		return s.rollbackAndFail(issue, path, "fix validation failed: file no longer parses")
	}

	return domain.FixResult{Issue: issue, Status: domain.FixStatusSuccess, Changes: changes}
}

func (s *FormattingStrategy) dryRun(ctx context.Context, issue domain.Issue, path string) domain.FixResult {
	err := s.runTool(ctx, "black", path, "--check")
	switch {
	case err == nil:
		return domain.FixResult{Issue: issue, Status: domain.FixStatusDryRun, Changes: []string{}}
	case errors.Is(err, exec.ErrNotFound):
		return failed(issue, "black not installed")
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Nonzero exit from --check means the file would be reformatted.
			return domain.FixResult{
				Issue:   issue,
				Status:  domain.FixStatusDryRun,
				Changes: []string{fmt.Sprintf("Would format %s with black", filepath.Base(path))},
			}
		}
		return failed(issue, fmt.Sprintf("black --check: %v", err))
	}
}

func (s *FormattingStrategy) rollbackAndFail(issue domain.Issue, path, message string) domain.FixResult {
	if err := s.files.Rollback(path); err != nil {
		message = fmt.Sprintf("%s (rollback also failed: %v)", message, err)
	}
	return failed(issue, message)
}

// syntaxValid checks that the file still parses as Python. When no
// interpreter is on the PATH the check is skipped rather than failing the
// whole fix.
func (s *FormattingStrategy) syntaxValid(ctx context.Context, path string) bool {
	interpreter, err := exec.LookPath("python3")
	if err != nil {
		if interpreter, err = exec.LookPath("python"); err != nil {
			return true
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, interpreter, "-c",
		"import ast, sys; ast.parse(open(sys.argv[1]).read())", path)
	return cmd.Run() == nil
}

func (s *FormattingStrategy) runTool(ctx context.Context, tool, path string, extraArgs ...string) error {
	toolCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append(extraArgs, path)
	cmd := exec.CommandContext(toolCtx, tool, args...)
	if err := cmd.Run(); err != nil {
		if toolCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %s", tool, s.timeout)
		}
		return err
	}
	return nil
}

func failed(issue domain.Issue, message string) domain.FixResult {
	return domain.FixResult{Issue: issue, Status: domain.FixStatusFailed, ErrorMessage: message}
}

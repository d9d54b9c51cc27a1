package testrunner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/storyforge/storyforge/internal/domain"
)

// maxCapturedOutput bounds how much test output is held in memory; anything
// beyond it is discarded.
const maxCapturedOutput = 1 << 20 // 1 MiB

// Runner detects the project's test runner from ecosystem marker files and
// executes it with a bounded timeout. It implements domain.TestValidator.
type Runner struct {
	projectRoot string
	timeout     time.Duration
}

// New creates a Runner. A non-positive timeout defaults to 60s.
func New(projectRoot string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Runner{projectRoot: projectRoot, timeout: timeout}
}

// RunTests runs the detected test suite, optionally scoped to a single
// target. The outcome distinguishes "tests failed" from "could not validate"
// (missing runner, timeout) so callers can decide whether to block.
func (r *Runner) RunTests(ctx context.Context, target string) domain.ValidationOutcome {
	name, args := r.detect(target)
	if name == "" {
		return domain.ValidationUnavailable
	}
	return r.run(ctx, name, args)
}

// detect picks the test command from marker files: package.json → npm,
// go.mod → go test, anything else falls back to pytest.
func (r *Runner) detect(target string) (string, []string) {
	if r.exists("package.json") {
		return "npm", []string{"test"}
	}
	if r.exists("go.mod") {
		if target != "" {
			return "go", []string{"test", target}
		}
		return "go", []string{"test", "./..."}
	}
	args := []string{"-q"}
	if target != "" {
		args = append(args, target)
	}
	return "pytest", args
}

func (r *Runner) exists(name string) bool {
	_, err := os.Stat(filepath.Join(r.projectRoot, name))
	return err == nil
}

func (r *Runner) run(ctx context.Context, name string, args []string) domain.ValidationOutcome {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = r.projectRoot

	// Bounded capture: the suite may be arbitrarily chatty.
	out := &cappedWriter{limit: maxCapturedOutput}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	switch {
	case err == nil:
		return domain.ValidationPassed
	case runCtx.Err() != nil:
		return domain.ValidationTimedOut
	case errors.Is(err, exec.ErrNotFound):
		return domain.ValidationUnavailable
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return domain.ValidationFailed
		}
		return domain.ValidationUnavailable
	}
}

// cappedWriter keeps at most limit bytes and silently drops the rest.
type cappedWriter struct {
	buf   []byte
	limit int
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	if remaining := w.limit - len(w.buf); remaining > 0 {
		if len(p) > remaining {
			w.buf = append(w.buf, p[:remaining]...)
		} else {
			w.buf = append(w.buf, p...)
		}
	}
	return len(p), nil
}

func (w *cappedWriter) String() string { return string(w.buf) }

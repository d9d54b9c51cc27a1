package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultModel   = "anthropic/claude-sonnet-4-5"
	defaultTimeout = 300 * time.Second
	maxRetries     = 3
)

// CLIClient is an opaque text-in/text-out language model client backed by
// the `llm` command-line tool. Transient failures are retried with
// exponential backoff; a missing binary or an invalid invocation is not.
type CLIClient struct {
	model   string
	timeout time.Duration
}

// New creates a CLIClient. The model defaults to the STORYFORGE_MODEL
// environment variable, then to a built-in default; the timeout to
// STORYFORGE_LLM_TIMEOUT seconds.
func New() *CLIClient {
	model := os.Getenv("STORYFORGE_MODEL")
	if model == "" {
		model = defaultModel
	}

	timeout := defaultTimeout
	if raw := os.Getenv("STORYFORGE_LLM_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	return &CLIClient{model: model, timeout: timeout}
}

// Complete sends the prompt to the model and returns its text response.
func (c *CLIClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	var response string

	operation := func() error {
		out, err := c.invoke(ctx, systemPrompt, prompt)
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		response = out
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("llm call failed: %w", err)
	}
	return response, nil
}

func (c *CLIClient) invoke(ctx context.Context, systemPrompt, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"-m", c.model}
	if systemPrompt != "" {
		args = append(args, "-s", systemPrompt)
	}
	args = append(args, prompt)

	cmd := exec.CommandContext(callCtx, "llm", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("llm timed out after %s", c.timeout)
		}
		return "", fmt.Errorf("llm: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

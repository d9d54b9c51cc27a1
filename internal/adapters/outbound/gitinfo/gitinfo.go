package gitinfo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/storyforge/storyforge/internal/domain"
)

// diffExclusions keeps reviews focused on implementation code.
var diffExclusions = []string{
	":!*.md",
	":!*.yaml",
	":!*.yml",
	":!*.bak",
	":!docs/*",
	":!.storyforge/*",
}

// GitInfoAdapter implements domain.GitInfo using go-git for repository
// queries and the git binary for diff retrieval.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func (g *GitInfoAdapter) IsRepo(projectRoot string) bool {
	_, err := git.PlainOpen(projectRoot)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(projectRoot string) (string, error) {
	repo, err := git.PlainOpen(projectRoot)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// DefaultBranch resolves the remote HEAD branch, falling back to "main".
func (g *GitInfoAdapter) DefaultBranch(ctx context.Context, projectRoot string) string {
	cmd := exec.CommandContext(ctx, "git", "symbolic-ref", "refs/remotes/origin/HEAD")
	cmd.Dir = projectRoot

	out, err := cmd.Output()
	if err != nil {
		return "main"
	}
	branch := strings.TrimPrefix(strings.TrimSpace(string(out)), "refs/remotes/origin/")
	if branch == "" {
		return "main"
	}
	return branch
}

// Diff returns the diff of the working tree against origin/<baseBranch>,
// excluding documentation and backup artifacts. The branch name is validated
// against the allow-list before it reaches the command line, so a crafted
// name can never be interpreted as a git flag.
func (g *GitInfoAdapter) Diff(ctx context.Context, projectRoot, baseBranch string) (string, error) {
	if err := domain.ValidateBranchName(baseBranch); err != nil {
		return "", err
	}

	args := []string{"diff", "origin/" + baseBranch, "--"}
	args = append(args, diffExclusions...)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = projectRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git diff timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("git diff against origin/%s: %w (%s)", baseBranch, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

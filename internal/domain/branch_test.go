package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storyforge/storyforge/internal/domain"
)

func TestValidateBranchName(t *testing.T) {
	valid := []string{
		"main",
		"develop",
		"feature/1-2-login",
		"release/v1.2.3",
		"user_branch",
		"v2",
	}
	for _, branch := range valid {
		assert.NoError(t, domain.ValidateBranchName(branch), "branch %q", branch)
	}
}

func TestValidateBranchName_RejectsInjection(t *testing.T) {
	invalid := []string{
		"",
		"-rf",
		"--upload-pack=evil",
		"main; rm -rf /",
		"main && echo pwned",
		"branch name",
		"branch$(whoami)",
		"branch`id`",
	}
	for _, branch := range invalid {
		err := domain.ValidateBranchName(branch)
		assert.ErrorIs(t, err, domain.ErrInvalidBranchName, "branch %q", branch)
	}
}

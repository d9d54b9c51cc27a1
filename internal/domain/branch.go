package domain

import (
	"fmt"
	"regexp"
)

// branchNameRe allows alphanumerics, dots, underscores, hyphens, and forward
// slashes. The first character must not be a hyphen so a malicious branch
// name can never be interpreted as a git flag.
var branchNameRe = regexp.MustCompile(`^[a-zA-Z0-9._/][a-zA-Z0-9._/-]*$`)

// ValidateBranchName rejects branch names that could smuggle flags or shell
// metacharacters into an external git invocation.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBranchName)
	}
	if !branchNameRe.MatchString(branch) {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, branch)
	}
	return nil
}

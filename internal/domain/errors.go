package domain

import "errors"

var (
	// ErrBackupNotFound is returned when a restore is requested for a file
	// that has no active backup, or whose backup was deleted externally.
	ErrBackupNotFound = errors.New("no active backup found")

	// ErrOutsideProjectRoot is returned when a path resolves outside the
	// project root. It is raised before any filesystem mutation occurs.
	ErrOutsideProjectRoot = errors.New("path is outside project root")

	// ErrInvalidStatus is returned when a status value is not in the
	// enumerated workflow status set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidStoryKey is returned when a story key does not match the
	// N-N-slug shape.
	ErrInvalidStoryKey = errors.New("invalid story key")

	// ErrInvalidBranchName is returned when a branch name fails the
	// allow-list validation used before interpolating it into git commands.
	ErrInvalidBranchName = errors.New("invalid branch name")

	// ErrDirtyWorkingTree is returned when a safety gate requires a clean
	// working tree and the check fails or cannot be determined.
	ErrDirtyWorkingTree = errors.New("working tree is not clean")
)

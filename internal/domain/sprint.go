package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fatih/camelcase"
)

// Status is a story's position in the development workflow.
type Status string

const (
	StatusBacklog     Status = "backlog"
	StatusReadyForDev Status = "ready-for-dev"
	StatusPlanning    Status = "planning"
	StatusExecuting   Status = "executing"
	StatusInProgress  Status = "in-progress"
	StatusReview      Status = "review"
	StatusDone        Status = "done"
	StatusBlocked     Status = "blocked"
)

// ValidStatuses enumerates every accepted workflow status. The planning and
// executing states are a finer-grained layer some workflows use between
// ready-for-dev and in-progress; both granularities share this one set.
var ValidStatuses = []Status{
	StatusBacklog,
	StatusReadyForDev,
	StatusPlanning,
	StatusExecuting,
	StatusInProgress,
	StatusReview,
	StatusDone,
	StatusBlocked,
}

// IsValidStatus reports whether s is one of the enumerated workflow statuses.
func IsValidStatus(s Status) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

var storyKeyRe = regexp.MustCompile(`^[0-9]+-[0-9]+-[a-zA-Z0-9-]+$`)

// ValidateStoryKey checks the strict N-N-slug story key format.
func ValidateStoryKey(key string) error {
	if !storyKeyRe.MatchString(key) {
		return fmt.Errorf("%w: %q (expected N-N-slug, e.g. 1-2-login-page)", ErrInvalidStoryKey, key)
	}
	return nil
}

// IsStoryKey reports whether key has the loose story-key shape: two leading
// numeric segments separated by hyphens, then a non-empty suffix. Aggregate
// views use this to silently exclude non-conforming keys.
func IsStoryKey(key string) bool {
	parts := strings.Split(key, "-")
	if len(parts) < 3 {
		return false
	}
	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return false
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return false
	}
	return true
}

// NormalizeStoryKey slug-normalizes the title portion of a story key, so
// callers may pass "1-2-Login Flow" or "1-2-LoginFlow" and get
// "1-2-login-flow". Keys without two leading numeric segments, or whose
// title yields an empty slug, are returned unchanged for validation to
// reject.
func NormalizeStoryKey(key string) string {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) != 3 {
		return key
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return key
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return key
	}
	slug := Slugify(parts[2])
	if slug == "" {
		return key
	}
	return parts[0] + "-" + parts[1] + "-" + slug
}

// StoryEpic returns the epic number of a story key, or false if the key does
// not have the story-key shape.
func StoryEpic(key string) (int, bool) {
	if !IsStoryKey(key) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.SplitN(key, "-", 2)[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Slugify turns a story title into a key slug: camelCase identifiers are
// split into words, everything is lowercased, and runs of non-alphanumeric
// characters collapse to single hyphens.
func Slugify(title string) string {
	separator := func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}

	var words []string
	for _, field := range strings.FieldsFunc(title, separator) {
		words = append(words, camelcase.Split(field)...)
	}

	var b strings.Builder
	for _, word := range words {
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strings.ToLower(word))
	}
	return b.String()
}

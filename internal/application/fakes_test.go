package application_test

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/storyforge/storyforge/internal/domain"
)

// fakeLLM returns canned completions and records prompts.
type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Complete(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakeStore is an in-memory domain.StatusStore.
type fakeStore struct {
	statuses map[string]domain.Status
	updates  []string
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{statuses: make(map[string]domain.Status)}
}

func (f *fakeStore) UpdateStoryStatus(_ context.Context, storyKey string, status domain.Status) error {
	if f.err != nil {
		return f.err
	}
	f.statuses[storyKey] = status
	f.updates = append(f.updates, fmt.Sprintf("%s=%s", storyKey, status))
	return nil
}

func (f *fakeStore) StoriesByStatus(status domain.Status) ([]string, error) {
	var keys []string
	for key, s := range f.statuses {
		if s == status {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) NextStory(status domain.Status) (string, error) {
	keys, _ := f.StoriesByStatus(status)
	if len(keys) == 0 {
		return "", nil
	}
	return keys[0], nil
}

func (f *fakeStore) StoriesForEpic(epic int) (map[string]domain.Status, error) {
	stories := make(map[string]domain.Status)
	for key, s := range f.statuses {
		if n, ok := domain.StoryEpic(key); ok && n == epic {
			stories[key] = s
		}
	}
	return stories, nil
}

func (f *fakeStore) StatusSummary() (map[domain.Status]int, error) {
	counts := make(map[domain.Status]int)
	for _, s := range f.statuses {
		counts[s]++
	}
	return counts, nil
}

// fakeGit serves canned branch and diff answers.
type fakeGit struct {
	defaultBranch string
	diff          string
	diffErr       error
}

func (f *fakeGit) IsRepo(string) bool                           { return true }
func (f *fakeGit) CommitHash(string) (string, error)            { return "abc1234", nil }
func (f *fakeGit) DefaultBranch(context.Context, string) string { return f.defaultBranch }
func (f *fakeGit) Diff(_ context.Context, _, branch string) (string, error) {
	if f.diffErr != nil {
		return "", f.diffErr
	}
	return f.diff, nil
}

// fakeParser returns canned issues regardless of input.
type fakeParser struct {
	issues []domain.Issue
	err    error
}

func (f *fakeParser) Parse(string) []domain.Issue { return f.issues }
func (f *fakeParser) ParseFile(string) ([]domain.Issue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.issues, nil
}

// fakeGuard reports a fixed cleanliness verdict and flags configured paths
// as oversized.
type fakeGuard struct {
	clean    bool
	oversize []string
}

func (f *fakeGuard) CheckCleanWorkingTree() bool { return f.clean }

func (f *fakeGuard) ValidateFileSize(path string, _ int) bool {
	for _, suffix := range f.oversize {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	return true
}

// fakeValidator records whether it ran and returns a fixed outcome.
type fakeValidator struct {
	outcome domain.ValidationOutcome
	ran     bool
}

func (f *fakeValidator) RunTests(context.Context, string) domain.ValidationOutcome {
	f.ran = true
	return f.outcome
}

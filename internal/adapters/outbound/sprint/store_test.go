package sprint_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyforge/storyforge/internal/adapters/outbound/sprint"
	"github.com/storyforge/storyforge/internal/domain"
)

func newStore(t *testing.T, content string) (*sprint.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sprint-status.yaml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return sprint.New(path), path
}

func TestStore_UpdateStoryStatus(t *testing.T) {
	store, path := newStore(t, "development_status:\n  1-1-setup: backlog\n")

	err := store.UpdateStoryStatus(context.Background(), "1-1-setup", domain.StatusInProgress)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1-1-setup: in-progress")
}

func TestStore_UpdateStoryStatusCreatesFile(t *testing.T) {
	store, path := newStore(t, "")

	err := store.UpdateStoryStatus(context.Background(), "0-1-bootstrap", domain.StatusReadyForDev)
	require.NoError(t, err)
	assert.FileExists(t, path)

	stories, err := store.StoriesByStatus(domain.StatusReadyForDev)
	require.NoError(t, err)
	assert.Equal(t, []string{"0-1-bootstrap"}, stories)
}

func TestStore_UpdateStoryStatusRejectsInvalid(t *testing.T) {
	store, _ := newStore(t, "")

	err := store.UpdateStoryStatus(context.Background(), "1-1-setup", "shipped")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestStore_UpdateStoryStatusPreservesOtherEntries(t *testing.T) {
	store, _ := newStore(t, "development_status:\n  1-1-a: done\n  1-2-b: backlog\n")

	require.NoError(t, store.UpdateStoryStatus(context.Background(), "1-2-b", domain.StatusReview))

	done, err := store.StoriesByStatus(domain.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, []string{"1-1-a"}, done)

	review, err := store.StoriesByStatus(domain.StatusReview)
	require.NoError(t, err)
	assert.Equal(t, []string{"1-2-b"}, review)
}

func TestStore_ConcurrentUpdatesLoseNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprint-status.yaml")

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Each goroutine gets its own Store, as separate processes would.
			s := sprint.New(path)
			key := fmt.Sprintf("1-%d-story", i)
			errs[i] = s.UpdateStoryStatus(context.Background(), key, domain.StatusDone)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	done, err := sprint.New(path).StoriesByStatus(domain.StatusDone)
	require.NoError(t, err)
	assert.Len(t, done, writers)
}

func TestStore_StoriesByStatusSortedAndFiltered(t *testing.T) {
	store, _ := newStore(t, `development_status:
  2-2-zeta: review
  2-1-alpha: review
  epic-2-note: review
  1-1-done: done
`)

	stories, err := store.StoriesByStatus(domain.StatusReview)
	require.NoError(t, err)
	// Non-story keys are excluded; the rest come back sorted.
	assert.Equal(t, []string{"2-1-alpha", "2-2-zeta"}, stories)
}

func TestStore_NextStory(t *testing.T) {
	store, _ := newStore(t, "development_status:\n  1-2-b: backlog\n  1-1-a: backlog\n")

	next, err := store.NextStory(domain.StatusBacklog)
	require.NoError(t, err)
	assert.Equal(t, "1-1-a", next)

	none, err := store.NextStory(domain.StatusBlocked)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_StoriesForEpic(t *testing.T) {
	store, _ := newStore(t, `development_status:
  1-1-a: done
  1-2-b: review
  2-1-c: backlog
`)

	stories, err := store.StoriesForEpic(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Status{
		"1-1-a": domain.StatusDone,
		"1-2-b": domain.StatusReview,
	}, stories)
}

func TestStore_StatusSummary(t *testing.T) {
	store, _ := newStore(t, `development_status:
  1-1-a: done
  1-2-b: done
  2-1-c: backlog
  notes: done
`)

	summary, err := store.StatusSummary()
	require.NoError(t, err)
	assert.Equal(t, 2, summary[domain.StatusDone])
	assert.Equal(t, 1, summary[domain.StatusBacklog])
}

func TestStore_MissingFileReadsEmpty(t *testing.T) {
	store, _ := newStore(t, "")

	summary, err := store.StatusSummary()
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestStore_MalformedYAML(t *testing.T) {
	store, _ := newStore(t, "development_status: [not: a: map\n")

	_, err := store.StatusSummary()
	assert.Error(t, err)
}

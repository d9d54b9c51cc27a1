package sprint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/storyforge/storyforge/internal/domain"
)

const (
	lockFileName     = ".sprint-status.lock"
	lockPollInterval = 50 * time.Millisecond
	lockTimeout      = 10 * time.Second
)

// statusFile is the on-disk shape of the sprint status store.
type statusFile struct {
	DevelopmentStatus map[string]string `yaml:"development_status"`
}

// Store persists the story key → workflow status mapping as YAML. Writes are
// serialized across processes by an exclusive advisory lock on a sentinel
// file beside the store, and persisted atomically so no reader ever observes
// a partially written file. Reads are lock-free.
type Store struct {
	path string
	lock *flock.Flock
}

// New creates a Store backed by the YAML file at path.
func New(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(filepath.Join(filepath.Dir(path), lockFileName)),
	}
}

// UpdateStoryStatus sets a story's workflow status. The full read-modify-write
// cycle runs under the exclusive lock to prevent lost updates when multiple
// processes race on the same file. Returns nil only after re-reading the
// store and confirming the value stuck.
func (s *Store) UpdateStoryStatus(ctx context.Context, storyKey string, status domain.Status) error {
	if !domain.IsValidStatus(status) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := s.lock.TryLockContext(lockCtx, lockPollInterval)
	if err != nil {
		return fmt.Errorf("acquiring sprint-status lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquiring sprint-status lock: timed out")
	}
	defer s.lock.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if data.DevelopmentStatus == nil {
		data.DevelopmentStatus = make(map[string]string)
	}
	data.DevelopmentStatus[storyKey] = string(status)

	if err := s.save(data); err != nil {
		return err
	}

	// Verify the write landed.
	reread, err := s.load()
	if err != nil {
		return fmt.Errorf("verifying status update: %w", err)
	}
	if reread.DevelopmentStatus[storyKey] != string(status) {
		return fmt.Errorf("status update for %s did not persist", storyKey)
	}
	return nil
}

// StoriesByStatus returns the keys of all stories with the given status, in
// sorted order. Keys that do not look like story keys are excluded.
func (s *Store) StoriesByStatus(status domain.Status) ([]string, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}

	var keys []string
	for key, value := range data.DevelopmentStatus {
		if value == string(status) && domain.IsStoryKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// NextStory returns the first story with the given status, or "" when none
// exists.
func (s *Store) NextStory(status domain.Status) (string, error) {
	stories, err := s.StoriesByStatus(status)
	if err != nil {
		return "", err
	}
	if len(stories) == 0 {
		return "", nil
	}
	return stories[0], nil
}

// StoriesForEpic returns every story of an epic with its status.
func (s *Store) StoriesForEpic(epic int) (map[string]domain.Status, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}

	stories := make(map[string]domain.Status)
	for key, value := range data.DevelopmentStatus {
		if !domain.IsStoryKey(key) {
			continue
		}
		if n, ok := domain.StoryEpic(key); ok && n == epic {
			stories[key] = domain.Status(value)
		}
	}
	return stories, nil
}

// StatusSummary returns the number of stories in each status.
func (s *Store) StatusSummary() (map[domain.Status]int, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Status]int)
	for key, value := range data.DevelopmentStatus {
		if domain.IsStoryKey(key) {
			counts[domain.Status(value)]++
		}
	}
	return counts, nil
}

func (s *Store) load() (*statusFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &statusFile{}, nil
		}
		return nil, fmt.Errorf("reading sprint status: %w", err)
	}

	var parsed statusFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing sprint status: %w", err)
	}
	return &parsed, nil
}

// save writes the store atomically: temp file in the same directory, sync,
// then rename over the target.
func (s *Store) save(data *statusFile) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding sprint status: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sprint-status.*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing sprint status: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing sprint status: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing sprint status: %w", err)
	}
	return nil
}

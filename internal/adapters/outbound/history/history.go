package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/storyforge/storyforge/internal/domain"
)

const historyFile = ".storyforge/history/runs.json"

// maxEntries bounds the on-disk log; oldest runs are dropped first.
const maxEntries = 200

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

func (h *FileHistory) Save(projectRoot string, entry domain.RunEntry) error {
	entries, err := h.Load(projectRoot)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	fp := filepath.Join(projectRoot, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(projectRoot string) ([]domain.RunEntry, error) {
	fp := filepath.Join(projectRoot, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

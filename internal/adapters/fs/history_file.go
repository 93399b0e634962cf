// Package fs persists kiosk state on the local file system.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

const historyFileName = "history.json"

// HistoryFile implements ports.HistoryRepository using a JSON file.
// The file holds the full list, newest entry first.
type HistoryFile struct {
	dir string

	mu sync.Mutex
}

// NewHistoryFile creates a HistoryFile stored in dir.
func NewHistoryFile(dir string) *HistoryFile {
	return &HistoryFile{dir: dir}
}

// Append prepends entry and rewrites the file atomically.
func (r *HistoryFile) Append(ctx context.Context, entry domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	entries = append([]domain.HistoryEntry{entry}, entries...)
	return r.save(entries)
}

// List returns all entries, newest first.
// Returns an empty slice and nil error if no history file exists.
func (r *HistoryFile) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Clear removes every entry.
func (r *HistoryFile) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save([]domain.HistoryEntry{})
}

// Path returns the full path to the history file.
func (r *HistoryFile) Path() string {
	return filepath.Join(r.dir, historyFileName)
}

func (r *HistoryFile) load() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.HistoryEntry{}, nil
		}
		return nil, err
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

// save writes to a temp file, then renames it over the old one.
func (r *HistoryFile) save(entries []domain.HistoryEntry) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

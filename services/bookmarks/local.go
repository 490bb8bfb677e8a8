package bookmarks

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"releaseradar/models"
)

const localFileName = "bookmarks.json"

// LocalStore is the device-scoped persistence tier: a single JSON file holding
// the bookmark set of whoever is using the app without an identity. It is
// backed by an afero filesystem so tests run against an in-memory one.
type LocalStore struct {
	fs   afero.Fs
	path string
}

func NewLocalStore(fs afero.Fs, dir string) *LocalStore {
	return &LocalStore{fs: fs, path: filepath.Join(dir, localFileName)}
}

// Load reads the saved set. A missing file is a normal first run and a
// corrupt file is treated the same way: both yield an empty set rather than
// an error, because there is nothing a caller could do about either.
func (l *LocalStore) Load() []models.BookmarkEntry {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[bookmarks] failed to read %s: %v", l.path, err)
		}
		return nil
	}

	var entries []models.BookmarkEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[bookmarks] discarding corrupt local bookmarks: %v", err)
		return nil
	}

	valid := entries[:0]
	for _, entry := range entries {
		if entry.ID > 0 && entry.Category.Valid() {
			valid = append(valid, entry)
		}
	}
	return valid
}

// Save writes the full set atomically via a temp file rename.
func (l *LocalStore) Save(entries []models.BookmarkEntry) error {
	if entries == nil {
		entries = []models.BookmarkEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}

	if err := l.fs.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create bookmarks directory: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := afero.WriteFile(l.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write bookmarks file: %w", err)
	}
	if err := l.fs.Rename(tmp, l.path); err != nil {
		l.fs.Remove(tmp)
		return fmt.Errorf("failed to replace bookmarks file: %w", err)
	}
	return nil
}

// Clear removes the saved set. A missing file is fine.
func (l *LocalStore) Clear() error {
	if err := l.fs.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove bookmarks file: %w", err)
	}
	return nil
}

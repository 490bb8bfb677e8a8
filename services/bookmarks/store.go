package bookmarks

import (
	"sync"

	"releaseradar/models"
)

// ChangeOp identifies a discrete, attributable store mutation.
type ChangeOp int

const (
	OpAdded ChangeOp = iota
	OpRemoved
)

// Store is the canonical in-memory bookmark set for one session. Identity is
// the (id, category) key; insertion order is preserved for display. Consumers
// receive a Store by injection so tests can construct isolated instances.
type Store struct {
	mu      sync.RWMutex
	order   []models.ItemKey
	entries map[models.ItemKey]models.BookmarkEntry

	// listener observes add/remove mutations. ReplaceAll is the bulk load
	// path and deliberately does not fire it.
	listener func(op ChangeOp, entry models.BookmarkEntry)
}

func NewStore() *Store {
	return &Store{entries: make(map[models.ItemKey]models.BookmarkEntry)}
}

// SetListener registers the persistence hook observing discrete mutations.
func (s *Store) SetListener(fn func(op ChangeOp, entry models.BookmarkEntry)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// Add inserts an entry. Adding a key already present is a no-op.
func (s *Store) Add(entry models.BookmarkEntry) bool {
	s.mu.Lock()
	key := entry.Key()
	if _, exists := s.entries[key]; exists {
		s.mu.Unlock()
		return false
	}
	s.entries[key] = entry
	s.order = append(s.order, key)
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(OpAdded, entry)
	}
	return true
}

// Remove deletes an entry. Removing an absent key is a no-op.
func (s *Store) Remove(entry models.BookmarkEntry) bool {
	s.mu.Lock()
	key := entry.Key()
	stored, exists := s.entries[key]
	if !exists {
		s.mu.Unlock()
		return false
	}
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(OpRemoved, stored)
	}
	return true
}

// Has reports membership by key.
func (s *Store) Has(key models.ItemKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// ReplaceAll swaps the whole set in one step. It is used exclusively by the
// reconciler during initial load; UI-driven mutations always go through Add
// and Remove so the persistence listener observes them individually.
func (s *Store) ReplaceAll(entries []models.BookmarkEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[models.ItemKey]models.BookmarkEntry, len(entries))
	s.order = s.order[:0]
	for _, entry := range entries {
		key := entry.Key()
		if _, dup := s.entries[key]; dup {
			continue
		}
		s.entries[key] = entry
		s.order = append(s.order, key)
	}
}

// Snapshot returns the entries in insertion order.
func (s *Store) Snapshot() []models.BookmarkEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BookmarkEntry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.entries[key])
	}
	return out
}

// Len returns the number of bookmarked titles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

package bookmarks

import (
	"log"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"releaseradar/internal/database"
	"releaseradar/models"
)

// RemoteStore is the per-user persistence tier.
type RemoteStore interface {
	ListByUser(userID string) ([]models.BookmarkRecord, error)
	Exists(userID string, key models.ItemKey) (bool, error)
	Create(userID string, entry models.BookmarkEntry) (models.BookmarkRecord, error)
	DeleteByKey(userID string, key models.ItemKey) error
	ClearUser(userID string) error
}

var _ RemoteStore = (*database.BookmarkRepository)(nil)

// State tracks the reconciler through its load sequence. Write-back is armed
// only once Ready is reached, so a rehydrated set is never echoed straight
// back to the tier it was just read from.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Reconciler keeps the in-memory Store synchronized with whichever
// persistence tier the current identity selects: the local file when nobody
// is signed in, the remote per-user store otherwise. Mutations apply to the
// Store immediately; persistence runs behind them and is never rolled back
// into the Store on failure.
type Reconciler struct {
	store  *Store
	local  *LocalStore
	remote RemoteStore

	mu     sync.Mutex
	state  State
	userID string

	wg sync.WaitGroup
}

func NewReconciler(store *Store, local *LocalStore, remote RemoteStore) *Reconciler {
	r := &Reconciler{store: store, local: local, remote: remote}
	store.SetListener(r.onChange)
	return r
}

// State reports the current lifecycle phase.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// UserID reports the active identity, empty when signed out.
func (r *Reconciler) UserID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userID
}

// SetIdentity switches the active identity and runs the load sequence for
// it. With an identity, any locally saved set is first migrated into the
// remote store (skipping keys already present there) and the local file is
// cleared; the Store is then rehydrated from the remote set. Without one,
// the Store is rehydrated from the local file. Write-back stays disarmed
// until the rehydrated set is in place.
func (r *Reconciler) SetIdentity(userID string) {
	r.mu.Lock()
	r.state = StateLoading
	r.userID = userID
	r.mu.Unlock()

	r.wg.Wait()

	if userID == "" {
		r.store.ReplaceAll(r.local.Load())
	} else {
		r.migrateLocal(userID)
		r.store.ReplaceAll(r.loadRemote(userID))
	}

	r.mu.Lock()
	r.state = StateReady
	r.mu.Unlock()
}

func (r *Reconciler) migrateLocal(userID string) {
	entries := r.local.Load()
	if len(entries) == 0 {
		return
	}

	log.Printf("[bookmarks] migrating %d local bookmarks to user %s", len(entries), userID)
	migrated := true
	for _, entry := range entries {
		exists, err := r.remote.Exists(userID, entry.Key())
		if err != nil {
			log.Printf("[bookmarks] migration lookup failed for %s: %v", entry.Key(), err)
			migrated = false
			continue
		}
		if exists {
			continue
		}
		if _, err := r.remote.Create(userID, entry); err != nil {
			log.Printf("[bookmarks] migration write failed for %s: %v", entry.Key(), err)
			migrated = false
		}
	}

	// The local file is only cleared once every entry made it across, so a
	// partial migration can finish on the next sign-in.
	if migrated {
		if err := r.local.Clear(); err != nil {
			log.Printf("[bookmarks] failed to clear local bookmarks after migration: %v", err)
		}
	}
}

func (r *Reconciler) loadRemote(userID string) []models.BookmarkEntry {
	records, err := r.remote.ListByUser(userID)
	if err != nil {
		log.Printf("[bookmarks] failed to load bookmarks for user %s: %v", userID, err)
		return nil
	}
	entries := make([]models.BookmarkEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, record.Entry())
	}
	return entries
}

// ClearAll empties the Store and the active persistence tier.
func (r *Reconciler) ClearAll() error {
	r.mu.Lock()
	userID := r.userID
	r.mu.Unlock()

	r.store.ReplaceAll(nil)
	if userID == "" {
		return r.local.Clear()
	}
	return r.remote.ClearUser(userID)
}

// Flush blocks until in-flight remote writes have settled.
func (r *Reconciler) Flush() {
	r.wg.Wait()
}

func (r *Reconciler) onChange(op ChangeOp, entry models.BookmarkEntry) {
	r.mu.Lock()
	state := r.state
	userID := r.userID
	r.mu.Unlock()

	if state != StateReady {
		return
	}

	if userID == "" {
		if err := r.local.Save(r.store.Snapshot()); err != nil {
			log.Printf("[bookmarks] failed to save local bookmarks: %v", err)
		}
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := retry.Do(
			func() error {
				switch op {
				case OpAdded:
					_, err := r.remote.Create(userID, entry)
					return err
				default:
					return r.remote.DeleteByKey(userID, entry.Key())
				}
			},
			retry.Attempts(3),
			retry.Delay(200*time.Millisecond),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			log.Printf("[bookmarks] remote write failed for %s: %v", entry.Key(), err)
		}
	}()
}

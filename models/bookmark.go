package models

import "time"

// BookmarkEntry is a saved title reference. Equality is (ID, Category);
// collections of entries always have set semantics on that key even though
// they are stored as ordered sequences.
type BookmarkEntry struct {
	ID        int64     `json:"id"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Key returns the (id, category) identity used for dedup across all tiers.
func (b BookmarkEntry) Key() ItemKey {
	return ItemKey{ID: b.ID, Category: b.Category}
}

// BookmarkRecord is a remote-store row: one record per bookmark keyed by
// (userID, id, category) with a server-assigned creation timestamp.
type BookmarkRecord struct {
	RecordID  string    `json:"recordId"`
	UserID    string    `json:"userId"`
	ItemID    int64     `json:"id"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry converts the record back into the in-memory representation.
func (r BookmarkRecord) Entry() BookmarkEntry {
	return BookmarkEntry{ID: r.ItemID, Category: r.Category, CreatedAt: r.CreatedAt}
}

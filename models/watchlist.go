package models

import "time"

// WatchlistCard is the display record materialized for one bookmarked title.
// LoadFailed marks a placeholder produced when the per-item detail fetch
// failed; one bad ID never blanks the whole watchlist.
type WatchlistCard struct {
	ID           int64     `json:"id"`
	Category     Category  `json:"category"`
	Title        string    `json:"title,omitempty"`
	PosterURL    string    `json:"posterUrl,omitempty"`
	BackdropURL  string    `json:"backdropUrl,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	ReleaseDate  time.Time `json:"releaseDate,omitempty"`
	BookmarkedAt time.Time `json:"bookmarkedAt,omitempty"`
	LoadFailed   bool      `json:"loadFailed,omitempty"`
}

// Key returns the (id, category) identity of the underlying bookmark.
func (c WatchlistCard) Key() ItemKey {
	return ItemKey{ID: c.ID, Category: c.Category}
}

// WatchlistBuckets partitions a bookmark set by release status. The buckets
// are disjoint and their union is exactly the input set.
type WatchlistBuckets struct {
	Upcoming  []WatchlistCard `json:"upcoming"`
	Available []WatchlistCard `json:"available"`
	Unknown   []WatchlistCard `json:"unknown"`
}

// Total returns the number of cards across all buckets.
func (b WatchlistBuckets) Total() int {
	return len(b.Upcoming) + len(b.Available) + len(b.Unknown)
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies one of the three content domains tracked by the system.
type Category string

const (
	CategoryMovies Category = "movies"
	CategorySeries Category = "series"
	CategoryAnime  Category = "anime"
)

// ParseCategory normalises user input into a known Category.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryMovies:
		return CategoryMovies, nil
	case CategorySeries:
		return CategorySeries, nil
	case CategoryAnime:
		return CategoryAnime, nil
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Valid reports whether the category is one of the three known domains.
func (c Category) Valid() bool {
	return c == CategoryMovies || c == CategorySeries || c == CategoryAnime
}

// ItemKey is the identity of a catalog record. Provider IDs are only unique
// within a category, so the pair is the dedup key everywhere in the system.
type ItemKey struct {
	ID       int64    `json:"id"`
	Category Category `json:"category"`
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s:%d", k.Category, k.ID)
}

// CatalogItem is the normalized cross-provider record. It is constructed
// per-request from upstream JSON and discarded after consumption.
type CatalogItem struct {
	ID       int64    `json:"id"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	// PosterURL and BackdropURL are always absolute URLs or empty. The
	// catalog adapters are the only place that knows whether a provider
	// returns full URLs or path fragments.
	PosterURL   string `json:"posterUrl,omitempty"`
	BackdropURL string `json:"backdropUrl,omitempty"`
	Overview    string `json:"overview,omitempty"`
	// PrimaryDate drives "is this upcoming" decisions: release date for
	// movies, first-air date for series, aired-from for anime. Zero means
	// the provider did not report a date.
	PrimaryDate time.Time `json:"primaryDate,omitempty"`
	// NextEpisodeDate is set by series enrichment when an ongoing show has
	// a confirmed upcoming episode. It takes precedence over PrimaryDate
	// for upcoming classification.
	NextEpisodeDate  time.Time `json:"nextEpisodeDate,omitempty"`
	NextSeasonNumber int       `json:"nextSeasonNumber,omitempty"`
	Popularity       float64   `json:"popularity,omitempty"`
	VoteAverage      float64   `json:"voteAverage,omitempty"`
}

// Key returns the (id, category) dedup key.
func (c CatalogItem) Key() ItemKey {
	return ItemKey{ID: c.ID, Category: c.Category}
}

// UpcomingDate returns the date used for upcoming decisions, preferring an
// enrichment-provided next-episode date over the primary date. The zero time
// means no date is known.
func (c CatalogItem) UpcomingDate() time.Time {
	if !c.NextEpisodeDate.IsZero() {
		return c.NextEpisodeDate
	}
	return c.PrimaryDate
}

// ListPage is the unit of aggregation output. Pages are produced fresh per
// request and replaced wholesale, never mutated in place, so a stale in-flight
// request can never partially overwrite newer results.
type ListPage struct {
	Items      []CatalogItem `json:"items"`
	LastPage   int           `json:"lastPage"`
	IsLastPage bool          `json:"isLastPage"`
}

// EmptyPage is the terminal result for upstream failures: callers treat it as
// a valid (if unsatisfying) state, never as an error to retry.
func EmptyPage() ListPage {
	return ListPage{Items: []CatalogItem{}, LastPage: 1, IsLastPage: true}
}

// SortKey enumerates the orderings a consumer may request.
type SortKey string

const (
	SortPopularity SortKey = "popularity"
	SortTitle      SortKey = "title"
	SortStartDate  SortKey = "start_date"
)

// ParseSortKey maps raw input to a recognized sort key, defaulting to
// popularity which is what every upstream ranks by when unspecified.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SortTitle:
		return SortTitle
	case SortStartDate:
		return SortStartDate
	default:
		return SortPopularity
	}
}

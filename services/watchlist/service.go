package watchlist

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc/pool"

	"releaseradar/models"
	"releaseradar/services/catalog"
)

const fetchWidth = 8

type movieTVDetailProvider interface {
	Detail(ctx context.Context, category models.Category, id int64) (*catalog.TitleDetail, error)
}

type animeDetailProvider interface {
	Detail(ctx context.Context, id int64) (*catalog.TitleDetail, error)
}

var _ movieTVDetailProvider = (*catalog.TMDBClient)(nil)
var _ animeDetailProvider = (*catalog.JikanClient)(nil)

// Service materializes a bookmark set into display cards bucketed by release
// status. Bookmarks only persist (id, category), so every page view fetches
// the current detail for each entry and classifies it against the clock.
type Service struct {
	movies movieTVDetailProvider
	anime  animeDetailProvider
	now    func() time.Time
}

func NewService(movies movieTVDetailProvider, anime animeDetailProvider) *Service {
	return &Service{movies: movies, anime: anime, now: time.Now}
}

// Materialize resolves every entry concurrently and partitions the results.
// A failed detail fetch yields a placeholder card rather than dropping the
// entry, so one bad ID never blanks the page.
func (s *Service) Materialize(ctx context.Context, entries []models.BookmarkEntry) models.WatchlistBuckets {
	cards := make([]models.WatchlistCard, len(entries))

	p := pool.New().WithMaxGoroutines(fetchWidth)
	for i, entry := range entries {
		p.Go(func() {
			cards[i] = s.resolve(ctx, entry)
		})
	}
	p.Wait()

	buckets := models.WatchlistBuckets{
		Upcoming:  []models.WatchlistCard{},
		Available: []models.WatchlistCard{},
		Unknown:   []models.WatchlistCard{},
	}
	now := s.now()
	for _, card := range cards {
		switch {
		case card.LoadFailed || card.ReleaseDate.IsZero():
			buckets.Unknown = append(buckets.Unknown, card)
		case card.ReleaseDate.After(now):
			buckets.Upcoming = append(buckets.Upcoming, card)
		default:
			buckets.Available = append(buckets.Available, card)
		}
	}
	return buckets
}

func (s *Service) resolve(ctx context.Context, entry models.BookmarkEntry) models.WatchlistCard {
	var detail *catalog.TitleDetail
	var err error
	if entry.Category == models.CategoryAnime {
		detail, err = s.anime.Detail(ctx, entry.ID)
	} else {
		detail, err = s.movies.Detail(ctx, entry.Category, entry.ID)
	}
	if err != nil {
		log.Printf("[watchlist] failed to load %s: %v", entry.Key(), err)
		return models.WatchlistCard{
			ID:           entry.ID,
			Category:     entry.Category,
			BookmarkedAt: entry.CreatedAt,
			LoadFailed:   true,
		}
	}

	item := detail.Item
	return models.WatchlistCard{
		ID:           item.ID,
		Category:     item.Category,
		Title:        item.Title,
		PosterURL:    item.PosterURL,
		BackdropURL:  item.BackdropURL,
		Overview:     item.Overview,
		ReleaseDate:  item.UpcomingDate(),
		BookmarkedAt: entry.CreatedAt,
	}
}

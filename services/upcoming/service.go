package upcoming

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"releaseradar/config"
	"releaseradar/models"
	"releaseradar/services/catalog"
)

// movieTVProvider is the slice of the TMDB adapter the aggregator needs.
type movieTVProvider interface {
	Discover(ctx context.Context, category models.Category, page int, sortKey models.SortKey, dateFloor time.Time) (models.ListPage, error)
	Search(ctx context.Context, category models.Category, query string, page int) (models.ListPage, error)
	DiscoverByGenre(ctx context.Context, category models.Category, genre models.GenreDef, page int, dateFloor time.Time) (models.ListPage, error)
	OnTheAir(ctx context.Context, page int) ([]models.CatalogItem, error)
	Detail(ctx context.Context, category models.Category, id int64) (*catalog.TitleDetail, error)
}

// animeProvider is the slice of the Jikan adapter the aggregator needs.
type animeProvider interface {
	Discover(ctx context.Context, page int, sortKey models.SortKey) (models.ListPage, error)
	Search(ctx context.Context, query string, page int) (models.ListPage, error)
	ByGenre(ctx context.Context, genreID, page, limit int) (models.ListPage, error)
	TopUpcoming(ctx context.Context, limit int) ([]models.CatalogItem, error)
	SeasonsUpcoming(ctx context.Context, limit int) ([]models.CatalogItem, error)
}

var (
	_ movieTVProvider = (*catalog.TMDBClient)(nil)
	_ animeProvider   = (*catalog.JikanClient)(nil)
)

// detailFanOutWidth bounds concurrent enrichment detail fetches per request.
const detailFanOutWidth = 8

// jikanPageSize is the fixed upstream page size used when walking genre pages.
const jikanPageSize = 25

// ListRequest captures one aggregation request from a consumer.
type ListRequest struct {
	Category  models.Category `json:"category"`
	Query     string          `json:"query,omitempty"`
	SortKey   models.SortKey  `json:"sortKey"`
	Page      int             `json:"page"`
	GenreSlug string          `json:"genreSlug,omitempty"`
}

// MostAnticipated holds the three per-category most-anticipated rows. The
// categories are never merged because provider popularity scales are not
// cross-comparable.
type MostAnticipated struct {
	Movies []models.CatalogItem `json:"movies"`
	Series []models.CatalogItem `json:"series"`
	Anime  []models.CatalogItem `json:"anime"`
}

// Service aggregates upcoming-release listings across the two providers.
// Upstream failures always degrade to empty pages, never to errors: callers
// must treat an empty result as a valid terminal state.
type Service struct {
	movies movieTVProvider
	anime  animeProvider
	cfg    config.AggregationSettings
	now    func() time.Time
}

func NewService(movies movieTVProvider, anime animeProvider, cfg config.AggregationSettings) *Service {
	return &Service{
		movies: movies,
		anime:  anime,
		cfg:    cfg,
		now:    time.Now,
	}
}

// today returns the current day at zero time-of-day in UTC. All upcoming
// comparisons happen at day granularity in this one timezone.
func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// cutoff is the oldest date still treated as upcoming: the grace window keeps
// just-released titles visible briefly and tolerates provider clock skew.
func (s *Service) cutoff() time.Time {
	return s.today().AddDate(0, 0, -s.cfg.GraceWindowDays)
}

// List serves the primary browse surface: search or discover for one
// category, with series enrichment merged in.
func (s *Service) List(ctx context.Context, req ListRequest) models.ListPage {
	if req.Page < 1 {
		req.Page = 1
	}

	switch req.Category {
	case models.CategoryAnime:
		return s.listAnime(ctx, req)
	case models.CategoryMovies:
		return s.listMovies(ctx, req)
	case models.CategorySeries:
		return s.listSeries(ctx, req)
	}
	log.Printf("[upcoming] list: unknown category %q", req.Category)
	return models.EmptyPage()
}

// listAnime trusts the provider's own upcoming filter: no date filtering at
// list level.
func (s *Service) listAnime(ctx context.Context, req ListRequest) models.ListPage {
	var (
		page models.ListPage
		err  error
	)
	if strings.TrimSpace(req.Query) != "" {
		page, err = s.anime.Search(ctx, req.Query, req.Page)
	} else {
		page, err = s.anime.Discover(ctx, req.Page, req.SortKey)
	}
	if err != nil {
		log.Printf("[upcoming] anime list failed: %v", err)
		return models.EmptyPage()
	}
	return page
}

func (s *Service) listMovies(ctx context.Context, req ListRequest) models.ListPage {
	var (
		page models.ListPage
		err  error
	)
	if strings.TrimSpace(req.Query) != "" {
		page, err = s.movies.Search(ctx, models.CategoryMovies, req.Query, req.Page)
	} else {
		page, err = s.movies.Discover(ctx, models.CategoryMovies, req.Page, req.SortKey, s.today())
	}
	if err != nil {
		log.Printf("[upcoming] movie list failed: %v", err)
		return models.EmptyPage()
	}
	page.Items = s.filterUpcoming(page.Items)
	return page
}

func (s *Service) listSeries(ctx context.Context, req ListRequest) models.ListPage {
	searching := strings.TrimSpace(req.Query) != ""

	var (
		page models.ListPage
		err  error
	)
	if searching {
		page, err = s.movies.Search(ctx, models.CategorySeries, req.Query, req.Page)
	} else {
		page, err = s.movies.Discover(ctx, models.CategorySeries, req.Page, req.SortKey, s.today())
	}
	if err != nil {
		log.Printf("[upcoming] series list failed: %v", err)
		return models.EmptyPage()
	}

	if searching {
		// Search results for ongoing shows carry only the first-air date,
		// which is in the past; annotate them with next-episode dates so the
		// upcoming filter can keep them.
		page.Items = s.annotateNextEpisodes(ctx, page.Items)
	} else if req.Page == 1 {
		// Discover only surfaces shows by first-air date and misses ongoing
		// shows with a newly announced episode; pull those from the on-the-air
		// cross-section. Enrichment only supplements page 1 and never changes
		// the provider's pagination bounds.
		page.Items = mergeByKey(page.Items, s.onAirUpcoming(ctx, nil))
	}

	page.Items = s.filterUpcoming(page.Items)
	return page
}

// Genre returns the genre-browse list for a category, capped at the
// configured ceiling. Truncates, never errors, when upstream returns less.
func (s *Service) Genre(ctx context.Context, category models.Category, slug string) []models.CatalogItem {
	genre, ok := models.GenreBySlug(category, slug)
	if !ok {
		log.Printf("[upcoming] genre: unknown slug %q for %s", slug, category)
		return []models.CatalogItem{}
	}

	ceiling := s.cfg.GenreListCeiling
	if category == models.CategoryAnime {
		return s.animeGenre(ctx, genre, ceiling)
	}

	collected := make([]models.CatalogItem, 0, ceiling)
	for page := 1; page <= 3 && len(collected) < ceiling; page++ {
		result, err := s.movies.DiscoverByGenre(ctx, category, genre, page, s.today())
		if err != nil {
			log.Printf("[upcoming] genre %s/%s page %d failed: %v", category, slug, page, err)
			break
		}
		if len(result.Items) == 0 {
			break
		}
		collected = append(collected, result.Items...)
		if result.IsLastPage {
			break
		}
	}

	if category == models.CategorySeries {
		match := func(d *catalog.TitleDetail) bool {
			if genre.KDrama {
				return d.FromCountry("KR")
			}
			return d.HasGenre(genre.TMDBID)
		}
		collected = mergeByKey(collected, s.onAirUpcoming(ctx, match))
	}

	if len(collected) > ceiling {
		collected = collected[:ceiling]
	}
	return collected
}

func (s *Service) animeGenre(ctx context.Context, genre models.GenreDef, ceiling int) []models.CatalogItem {
	collected := make([]models.CatalogItem, 0, ceiling)
	for page := 1; page <= 4 && len(collected) < ceiling; page++ {
		result, err := s.anime.ByGenre(ctx, genre.JikanID, page, jikanPageSize)
		if err != nil {
			log.Printf("[upcoming] anime genre %s page %d failed: %v", genre.Slug, page, err)
			break
		}
		if len(result.Items) == 0 {
			break
		}
		collected = append(collected, result.Items...)
		if result.IsLastPage {
			break
		}
	}
	if len(collected) > ceiling {
		collected = collected[:ceiling]
	}
	return collected
}

// Trending returns the mixed hero row: the three categories fetched jointly
// and interleaved round-robin (one movie, one series, one anime), bounded by
// the shortest list. Items without a backdrop are skipped since the row
// renders full-bleed art.
func (s *Service) Trending(ctx context.Context) []models.CatalogItem {
	var movies, series, anime []models.CatalogItem

	p := pool.New().WithMaxGoroutines(3)
	p.Go(func() {
		page, err := s.movies.Discover(ctx, models.CategoryMovies, 1, models.SortPopularity, s.today())
		if err != nil {
			log.Printf("[upcoming] trending movies failed: %v", err)
			return
		}
		movies = withBackdrops(page.Items)
	})
	p.Go(func() {
		page, err := s.movies.Discover(ctx, models.CategorySeries, 1, models.SortPopularity, s.today())
		if err != nil {
			log.Printf("[upcoming] trending series failed: %v", err)
			return
		}
		series = withBackdrops(page.Items)
	})
	p.Go(func() {
		items, err := s.anime.SeasonsUpcoming(ctx, jikanPageSize)
		if err != nil {
			log.Printf("[upcoming] trending anime failed: %v", err)
			return
		}
		anime = withBackdrops(items)
	})
	p.Wait()

	bound := s.cfg.TrendingPerCategory
	for _, list := range [][]models.CatalogItem{movies, series, anime} {
		if len(list) < bound {
			bound = len(list)
		}
	}

	mixed := make([]models.CatalogItem, 0, bound*3)
	for i := 0; i < bound; i++ {
		mixed = append(mixed, movies[i], series[i], anime[i])
	}
	return mixed
}

// Anticipated returns the three most-anticipated rows, popularity-ranked per
// category with the grace window applied as the upstream date floor. Items
// without posters are skipped.
func (s *Service) Anticipated(ctx context.Context) MostAnticipated {
	limit := s.cfg.AnticipatedPerCategory
	out := MostAnticipated{
		Movies: []models.CatalogItem{},
		Series: []models.CatalogItem{},
		Anime:  []models.CatalogItem{},
	}

	p := pool.New().WithMaxGoroutines(3)
	p.Go(func() {
		page, err := s.movies.Discover(ctx, models.CategoryMovies, 1, models.SortPopularity, s.cutoff())
		if err != nil {
			log.Printf("[upcoming] anticipated movies failed: %v", err)
			return
		}
		out.Movies = capItems(withPosters(page.Items), limit)
	})
	p.Go(func() {
		page, err := s.movies.Discover(ctx, models.CategorySeries, 1, models.SortPopularity, s.cutoff())
		if err != nil {
			log.Printf("[upcoming] anticipated series failed: %v", err)
			return
		}
		out.Series = capItems(withPosters(page.Items), limit)
	})
	p.Go(func() {
		items, err := s.anime.TopUpcoming(ctx, limit)
		if err != nil {
			log.Printf("[upcoming] anticipated anime failed: %v", err)
			return
		}
		out.Anime = capItems(withPosters(items), limit)
	})
	p.Wait()

	return out
}

// onAirUpcoming fetches the currently-airing cross-section, resolves each
// show's next-episode date concurrently, and returns the ones with an episode
// airing today or later. A nil match keeps every show; per-item fetch
// failures just mean no enrichment data for that show.
func (s *Service) onAirUpcoming(ctx context.Context, match func(*catalog.TitleDetail) bool) []models.CatalogItem {
	onAir, err := s.movies.OnTheAir(ctx, 1)
	if err != nil {
		log.Printf("[upcoming] on-the-air fetch failed: %v", err)
		return nil
	}
	if len(onAir) > s.cfg.EnrichmentLimit {
		onAir = onAir[:s.cfg.EnrichmentLimit]
	}

	p := pool.NewWithResults[*catalog.TitleDetail]().WithMaxGoroutines(detailFanOutWidth)
	for _, item := range onAir {
		id := item.ID
		p.Go(func() *catalog.TitleDetail {
			detail, err := s.movies.Detail(ctx, models.CategorySeries, id)
			if err != nil {
				log.Printf("[upcoming] series detail %d failed: %v", id, err)
				return nil
			}
			return detail
		})
	}

	today := s.today()
	var enriched []models.CatalogItem
	for _, detail := range p.Wait() {
		if detail == nil || detail.Item.NextEpisodeDate.IsZero() {
			continue
		}
		if detail.Item.NextEpisodeDate.Before(today) {
			continue
		}
		if match != nil && !match(detail) {
			continue
		}
		enriched = append(enriched, detail.Item)
	}
	return enriched
}

// annotateNextEpisodes attaches next-episode dates to the first N series of a
// result set, in place of a merge: the set itself is not supplemented.
func (s *Service) annotateNextEpisodes(ctx context.Context, items []models.CatalogItem) []models.CatalogItem {
	if len(items) == 0 {
		return items
	}
	limit := len(items)
	if limit > s.cfg.EnrichmentLimit {
		limit = s.cfg.EnrichmentLimit
	}

	p := pool.NewWithResults[*catalog.TitleDetail]().WithMaxGoroutines(detailFanOutWidth)
	for _, item := range items[:limit] {
		id := item.ID
		p.Go(func() *catalog.TitleDetail {
			detail, err := s.movies.Detail(ctx, models.CategorySeries, id)
			if err != nil {
				log.Printf("[upcoming] series detail %d failed: %v", id, err)
				return nil
			}
			return detail
		})
	}

	dates := make(map[models.ItemKey]models.CatalogItem)
	for _, detail := range p.Wait() {
		if detail == nil || detail.Item.NextEpisodeDate.IsZero() {
			continue
		}
		dates[detail.Item.Key()] = detail.Item
	}

	out := make([]models.CatalogItem, len(items))
	for i, item := range items {
		if enriched, ok := dates[item.Key()]; ok {
			item.NextEpisodeDate = enriched.NextEpisodeDate
			item.NextSeasonNumber = enriched.NextSeasonNumber
		}
		out[i] = item
	}
	return out
}

// mergeByKey merges the enrichment set into the base set on the (id,
// category) dedup key. On collision the enrichment record wins since it
// carries the more precise upcoming-episode date; it replaces the base record
// in place so upstream rank order is preserved, and genuinely new enrichment
// records are appended, not interleaved. Merging twice with the same inputs
// yields the same result as merging once.
func mergeByKey(base, enrichment []models.CatalogItem) []models.CatalogItem {
	if len(enrichment) == 0 {
		return base
	}

	byKey := make(map[models.ItemKey]models.CatalogItem, len(enrichment))
	for _, item := range enrichment {
		byKey[item.Key()] = item
	}

	merged := make([]models.CatalogItem, 0, len(base)+len(enrichment))
	seen := make(map[models.ItemKey]bool, len(base))
	for _, item := range base {
		if replacement, ok := byKey[item.Key()]; ok {
			item = replacement
		}
		merged = append(merged, item)
		seen[item.Key()] = true
	}
	for _, item := range enrichment {
		if !seen[item.Key()] {
			merged = append(merged, item)
			seen[item.Key()] = true
		}
	}
	return merged
}

// filterUpcoming keeps items whose resolved date falls inside the upcoming
// window. Items with no known date are dropped: for movies and series an
// undated record cannot be shown as upcoming.
func (s *Service) filterUpcoming(items []models.CatalogItem) []models.CatalogItem {
	cutoff := s.cutoff()
	kept := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		date := item.UpcomingDate()
		if date.IsZero() || date.Before(cutoff) {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func withBackdrops(items []models.CatalogItem) []models.CatalogItem {
	kept := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.BackdropURL != "" {
			kept = append(kept, item)
		}
	}
	return kept
}

func withPosters(items []models.CatalogItem) []models.CatalogItem {
	kept := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.PosterURL != "" {
			kept = append(kept, item)
		}
	}
	return kept
}

func capItems(items []models.CatalogItem, n int) []models.CatalogItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

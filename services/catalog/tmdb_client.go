package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"releaseradar/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// Optimized image sizes instead of "original" to keep payloads small.
	// Posters: w500 is plenty for cards; backdrops: w1280 covers 1080p.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"
)

// TMDBClient talks to the movie/TV metadata provider. It is the only place
// that knows TMDB returns relative image paths requiring a base-URL prefix.
type TMDBClient struct {
	token    string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func NewTMDBClient(token, language string, httpc *http.Client) *TMDBClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if strings.TrimSpace(language) == "" {
		language = "en-US"
	}
	return &TMDBClient{
		token:       strings.TrimSpace(token),
		language:    language,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

// IsConfigured reports whether an access token is present.
func (c *TMDBClient) IsConfigured() bool {
	return c != nil && c.token != ""
}

// doGET performs an HTTP GET with rate limiting and retry with exponential backoff.
func (c *TMDBClient) doGET(ctx context.Context, endpoint string, v any) error {
	var lastErr error
	backoff := 300 * time.Millisecond

	for attempt := 0; attempt < 3; attempt++ {
		c.throttleMu.Lock()
		since := time.Since(c.lastRequest)
		if since < c.minInterval {
			time.Sleep(c.minInterval - since)
		}
		c.lastRequest = time.Now()
		c.throttleMu.Unlock()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[tmdb] http error (attempt %d/3): %v", attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			log.Printf("[tmdb] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			lastErr = fmt.Errorf("tmdb request failed: %s", resp.Status)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("tmdb request failed: %s", resp.Status)
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			return err
		}
		return nil
	}

	return lastErr
}

type tmdbListResponse struct {
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
	Results      []tmdbListResult `json:"results"`
}

type tmdbListResult struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	FirstAirDate string  `json:"first_air_date"`
	ReleaseDate  string  `json:"release_date"`
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbDetailResponse struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Title         string      `json:"title"`
	Overview      string      `json:"overview"`
	PosterPath    string      `json:"poster_path"`
	BackdropPath  string      `json:"backdrop_path"`
	Popularity    float64     `json:"popularity"`
	VoteAverage   float64     `json:"vote_average"`
	FirstAirDate  string      `json:"first_air_date"`
	ReleaseDate   string      `json:"release_date"`
	Runtime       int         `json:"runtime"`
	Genres        []tmdbGenre `json:"genres"`
	OriginCountry []string    `json:"origin_country"`
	Status        string      `json:"status"`
	ProductionCompanies []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"production_companies"`
	NextEpisodeToAir *struct {
		AirDate       string `json:"air_date"`
		SeasonNumber  int    `json:"season_number"`
		EpisodeNumber int    `json:"episode_number"`
	} `json:"next_episode_to_air"`
}

type tmdbCreditsResponse struct {
	Cast []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Character   string `json:"character"`
		ProfilePath string `json:"profile_path"`
		Order       int    `json:"order"`
	} `json:"cast"`
}

type tmdbVideosResponse struct {
	Results []struct {
		Key      string `json:"key"`
		Name     string `json:"name"`
		Site     string `json:"site"`
		Type     string `json:"type"`
		Official bool   `json:"official"`
	} `json:"results"`
}

// mediaPath maps a category onto TMDB's movie/tv path segment.
func mediaPath(category models.Category) (string, error) {
	switch category {
	case models.CategoryMovies:
		return "movie", nil
	case models.CategorySeries:
		return "tv", nil
	}
	return "", fmt.Errorf("tmdb does not serve category %q", category)
}

// tmdbSortToken translates a recognized sort key into TMDB's own sort-by
// token. Title and date sort ascending; popularity descends.
func tmdbSortToken(mediaType string, key models.SortKey) string {
	switch key {
	case models.SortTitle:
		if mediaType == "movie" {
			return "original_title.asc"
		}
		return "name.asc"
	case models.SortStartDate:
		if mediaType == "movie" {
			return "primary_release_date.asc"
		}
		return "first_air_date.asc"
	default:
		return "popularity.desc"
	}
}

// tmdbDateFloorKey returns the lower-bound date filter param for discover.
func tmdbDateFloorKey(mediaType string) string {
	if mediaType == "movie" {
		return "primary_release_date.gte"
	}
	return "first_air_date.gte"
}

// Discover fetches one page of upcoming titles ordered by the given sort key.
// dateFloor is the discover lower bound applied upstream; pass a zero time to
// skip it.
func (c *TMDBClient) Discover(ctx context.Context, category models.Category, page int, sortKey models.SortKey, dateFloor time.Time) (models.ListPage, error) {
	mt, err := mediaPath(category)
	if err != nil {
		return models.ListPage{}, err
	}
	if !c.IsConfigured() {
		return models.ListPage{}, errors.New("tmdb access token not configured")
	}

	q := url.Values{}
	q.Set("language", c.language)
	q.Set("page", strconv.Itoa(maxInt(page, 1)))
	q.Set("sort_by", tmdbSortToken(mt, sortKey))
	q.Set("include_adult", "false")
	if !dateFloor.IsZero() {
		q.Set(tmdbDateFloorKey(mt), dateFloor.Format("2006-01-02"))
	}

	var payload tmdbListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/discover/%s?%s", tmdbBaseURL, mt, q.Encode()), &payload); err != nil {
		return models.ListPage{}, err
	}
	return c.toListPage(category, payload), nil
}

// Search fetches one page of title-search results.
func (c *TMDBClient) Search(ctx context.Context, category models.Category, query string, page int) (models.ListPage, error) {
	mt, err := mediaPath(category)
	if err != nil {
		return models.ListPage{}, err
	}
	if !c.IsConfigured() {
		return models.ListPage{}, errors.New("tmdb access token not configured")
	}

	q := url.Values{}
	q.Set("language", c.language)
	q.Set("page", strconv.Itoa(maxInt(page, 1)))
	q.Set("query", query)

	var payload tmdbListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/search/%s?%s", tmdbBaseURL, mt, q.Encode()), &payload); err != nil {
		return models.ListPage{}, err
	}
	return c.toListPage(category, payload), nil
}

// DiscoverByGenre fetches one genre-filtered discover page. The K-Drama
// pseudo-genre filters on origin country instead of a genre id.
func (c *TMDBClient) DiscoverByGenre(ctx context.Context, category models.Category, genre models.GenreDef, page int, dateFloor time.Time) (models.ListPage, error) {
	mt, err := mediaPath(category)
	if err != nil {
		return models.ListPage{}, err
	}
	if !c.IsConfigured() {
		return models.ListPage{}, errors.New("tmdb access token not configured")
	}

	q := url.Values{}
	q.Set("language", c.language)
	q.Set("page", strconv.Itoa(maxInt(page, 1)))
	q.Set("sort_by", "popularity.desc")
	q.Set("include_adult", "false")
	if !dateFloor.IsZero() {
		q.Set(tmdbDateFloorKey(mt), dateFloor.Format("2006-01-02"))
	}
	if genre.KDrama {
		q.Set("with_origin_country", "KR")
	} else {
		q.Set("with_genres", strconv.Itoa(genre.TMDBID))
	}

	var payload tmdbListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/discover/%s?%s", tmdbBaseURL, mt, q.Encode()), &payload); err != nil {
		return models.ListPage{}, err
	}
	return c.toListPage(category, payload), nil
}

// OnTheAir lists currently-airing series, the enrichment source for ongoing
// shows whose discover record misses the upcoming-episode date.
func (c *TMDBClient) OnTheAir(ctx context.Context, page int) ([]models.CatalogItem, error) {
	if !c.IsConfigured() {
		return nil, errors.New("tmdb access token not configured")
	}

	q := url.Values{}
	q.Set("language", c.language)
	q.Set("page", strconv.Itoa(maxInt(page, 1)))

	var payload tmdbListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/tv/on_the_air?%s", tmdbBaseURL, q.Encode()), &payload); err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(payload.Results))
	for _, r := range payload.Results {
		items = append(items, normalizeTMDBResult(models.CategorySeries, r))
	}
	return items, nil
}

// Detail fetches the full record for one title, including the next-episode
// air date for series.
func (c *TMDBClient) Detail(ctx context.Context, category models.Category, id int64) (*TitleDetail, error) {
	mt, err := mediaPath(category)
	if err != nil {
		return nil, err
	}
	if !c.IsConfigured() {
		return nil, errors.New("tmdb access token not configured")
	}

	q := url.Values{}
	q.Set("language", c.language)

	var payload tmdbDetailResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/%s/%d?%s", tmdbBaseURL, mt, id, q.Encode()), &payload); err != nil {
		return nil, err
	}
	return normalizeTMDBDetail(category, payload), nil
}

// Credits fetches the cast list for one title, ordered as upstream ranks it.
func (c *TMDBClient) Credits(ctx context.Context, category models.Category, id int64) ([]CastMember, error) {
	mt, err := mediaPath(category)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("language", c.language)

	var payload tmdbCreditsResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/%s/%d/credits?%s", tmdbBaseURL, mt, id, q.Encode()), &payload); err != nil {
		return nil, err
	}

	cast := make([]CastMember, 0, len(payload.Cast))
	for _, m := range payload.Cast {
		cast = append(cast, CastMember{
			ID:         m.ID,
			Name:       m.Name,
			Character:  m.Character,
			ProfileURL: buildTMDBImage(m.ProfilePath, tmdbPosterSize),
		})
	}
	return cast, nil
}

// Trailers fetches videos for a title filtered to YouTube trailers and teasers.
func (c *TMDBClient) Trailers(ctx context.Context, category models.Category, id int64) ([]Trailer, error) {
	mt, err := mediaPath(category)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("language", c.language)

	var payload tmdbVideosResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/%s/%d/videos?%s", tmdbBaseURL, mt, id, q.Encode()), &payload); err != nil {
		return nil, err
	}

	trailers := make([]Trailer, 0, len(payload.Results))
	for _, v := range payload.Results {
		if !strings.EqualFold(v.Site, "youtube") {
			continue
		}
		if v.Type != "Trailer" && v.Type != "Teaser" {
			continue
		}
		trailers = append(trailers, Trailer{
			Key:      v.Key,
			Name:     v.Name,
			Type:     v.Type,
			Official: v.Official,
		})
	}
	return trailers, nil
}

func (c *TMDBClient) toListPage(category models.Category, payload tmdbListResponse) models.ListPage {
	items := make([]models.CatalogItem, 0, len(payload.Results))
	for _, r := range payload.Results {
		items = append(items, normalizeTMDBResult(category, r))
	}
	lastPage := payload.TotalPages
	if lastPage < 1 {
		lastPage = 1
	}
	return models.ListPage{
		Items:      items,
		LastPage:   lastPage,
		IsLastPage: payload.Page >= lastPage,
	}
}

// normalizeTMDBResult maps a raw list result onto the cross-provider record.
// Every fallback rule lives here, not scattered across call sites.
func normalizeTMDBResult(category models.Category, r tmdbListResult) models.CatalogItem {
	return models.CatalogItem{
		ID:          r.ID,
		Category:    category,
		Title:       pickTitle(r.Title, r.Name),
		PosterURL:   buildTMDBImage(r.PosterPath, tmdbPosterSize),
		BackdropURL: buildTMDBImage(r.BackdropPath, tmdbBackdropSize),
		Overview:    r.Overview,
		PrimaryDate: parseDate(r.ReleaseDate, r.FirstAirDate),
		Popularity:  r.Popularity,
		VoteAverage: r.VoteAverage,
	}
}

func normalizeTMDBDetail(category models.Category, d tmdbDetailResponse) *TitleDetail {
	item := models.CatalogItem{
		ID:          d.ID,
		Category:    category,
		Title:       pickTitle(d.Title, d.Name),
		PosterURL:   buildTMDBImage(d.PosterPath, tmdbPosterSize),
		BackdropURL: buildTMDBImage(d.BackdropPath, tmdbBackdropSize),
		Overview:    d.Overview,
		PrimaryDate: parseDate(d.ReleaseDate, d.FirstAirDate),
		Popularity:  d.Popularity,
		VoteAverage: d.VoteAverage,
	}

	detail := &TitleDetail{
		Item:          item,
		Runtime:       d.Runtime,
		Status:        d.Status,
		OriginCountry: append([]string(nil), d.OriginCountry...),
	}
	for _, g := range d.Genres {
		detail.Genres = append(detail.Genres, Genre{ID: g.ID, Name: g.Name})
	}
	for _, p := range d.ProductionCompanies {
		detail.ProductionCompanies = append(detail.ProductionCompanies, p.Name)
	}
	if d.NextEpisodeToAir != nil {
		if air := parseDate(d.NextEpisodeToAir.AirDate); !air.IsZero() {
			detail.Item.NextEpisodeDate = air
			detail.Item.NextSeasonNumber = d.NextEpisodeToAir.SeasonNumber
		}
	}
	return detail
}

// pickTitle resolves the provider's title-vs-name split: movies carry "title",
// series carry "name".
func pickTitle(title, name string) string {
	if title != "" {
		return title
	}
	return name
}

// buildTMDBImage turns a relative image path into an absolute URL, or empty
// when the provider reported none.
func buildTMDBImage(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", tmdbImageBaseURL, path.Join(size, strings.TrimPrefix(trimmed, "/")))
}

// parseDate returns the first parseable day-granularity date among candidates.
func parseDate(candidates ...string) time.Time {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if t, err := time.Parse("2006-01-02", c); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, c); err == nil {
			return t.UTC().Truncate(24 * time.Hour)
		}
	}
	return time.Time{}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

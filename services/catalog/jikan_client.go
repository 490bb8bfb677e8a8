package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"releaseradar/models"
)

const jikanBaseURL = "https://api.jikan.moe/v4"

// JikanClient talks to the anime metadata provider. Jikan returns absolute
// image URLs, so no prefixing happens here, and its own status=upcoming
// filter is trusted instead of client-side date filtering.
type JikanClient struct {
	httpc *http.Client

	// Jikan enforces a strict public rate limit (3 req/s), so requests are
	// spaced further apart than TMDB's.
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func NewJikanClient(httpc *http.Client) *JikanClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &JikanClient{
		httpc:       httpc,
		minInterval: 350 * time.Millisecond,
	}
}

func (c *JikanClient) doGET(ctx context.Context, endpoint string, v any) error {
	var lastErr error
	backoff := 500 * time.Millisecond

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

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[jikan] http error (attempt %d/3): %v", attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			log.Printf("[jikan] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			lastErr = fmt.Errorf("jikan request failed: %s", resp.Status)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return fmt.Errorf("jikan request failed: %s", resp.Status)
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

type jikanImages struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
	WebP struct {
		ImageURL      string `json:"image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"webp"`
}

type jikanAnime struct {
	MalID    int64       `json:"mal_id"`
	Title    string      `json:"title"`
	TitleEng string      `json:"title_english"`
	Synopsis string      `json:"synopsis"`
	Images   jikanImages `json:"images"`
	Aired    struct {
		From string `json:"from"`
	} `json:"aired"`
	StartDate  string  `json:"start_date"`
	Members    int64   `json:"members"`
	Popularity int64   `json:"popularity"`
	Score      float64 `json:"score"`
	Episodes   int     `json:"episodes"`
	Status     string  `json:"status"`
	Genres     []struct {
		MalID int    `json:"mal_id"`
		Name  string `json:"name"`
	} `json:"genres"`
	Studios []struct {
		Name string `json:"name"`
	} `json:"studios"`
	Trailer struct {
		URL string `json:"url"`
	} `json:"trailer"`
}

type jikanListResponse struct {
	Data       []jikanAnime `json:"data"`
	Pagination struct {
		LastVisiblePage int  `json:"last_visible_page"`
		HasNextPage     bool `json:"has_next_page"`
	} `json:"pagination"`
}

type jikanDetailResponse struct {
	Data jikanAnime `json:"data"`
}

type jikanCharactersResponse struct {
	Data []struct {
		Character struct {
			MalID  int64       `json:"mal_id"`
			Name   string      `json:"name"`
			Images jikanImages `json:"images"`
		} `json:"character"`
		Role string `json:"role"`
	} `json:"data"`
}

// Discover fetches one page of upcoming anime ordered by the given sort key.
// Jikan's order_by tokens map directly from the recognized sort keys.
func (c *JikanClient) Discover(ctx context.Context, page int, sortKey models.SortKey) (models.ListPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(maxInt(page, 1)))
	q.Set("status", "upcoming")
	orderBy, sortDir := jikanOrderToken(sortKey)
	q.Set("order_by", orderBy)
	q.Set("sort", sortDir)

	var payload jikanListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/anime?%s", jikanBaseURL, q.Encode()), &payload); err != nil {
		return models.ListPage{}, err
	}
	return toJikanPage(payload, page), nil
}

// Search fetches one page of upcoming anime matching the free-text query.
func (c *JikanClient) Search(ctx context.Context, query string, page int) (models.ListPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(maxInt(page, 1)))
	q.Set("status", "upcoming")
	q.Set("q", query)

	var payload jikanListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/anime?%s", jikanBaseURL, q.Encode()), &payload); err != nil {
		return models.ListPage{}, err
	}
	return toJikanPage(payload, page), nil
}

// ByGenre fetches one page of upcoming anime in a genre, most-followed first.
func (c *JikanClient) ByGenre(ctx context.Context, genreID, page, limit int) (models.ListPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(maxInt(page, 1)))
	q.Set("genres", strconv.Itoa(genreID))
	q.Set("status", "upcoming")
	q.Set("order_by", "members")
	q.Set("sort", "desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var payload jikanListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/anime?%s", jikanBaseURL, q.Encode()), &payload); err != nil {
		return models.ListPage{}, err
	}
	return toJikanPage(payload, page), nil
}

// TopUpcoming lists upcoming anime ranked by follower count, the
// most-anticipated row source.
func (c *JikanClient) TopUpcoming(ctx context.Context, limit int) ([]models.CatalogItem, error) {
	q := url.Values{}
	q.Set("status", "upcoming")
	q.Set("order_by", "members")
	q.Set("sort", "desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var payload jikanListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/anime?%s", jikanBaseURL, q.Encode()), &payload); err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(payload.Data))
	for _, a := range payload.Data {
		items = append(items, normalizeJikanAnime(a))
	}
	return items, nil
}

// SeasonsUpcoming lists next-season anime, the trending-row source.
func (c *JikanClient) SeasonsUpcoming(ctx context.Context, limit int) ([]models.CatalogItem, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var payload jikanListResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/seasons/upcoming?%s", jikanBaseURL, q.Encode()), &payload); err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(payload.Data))
	for _, a := range payload.Data {
		items = append(items, normalizeJikanAnime(a))
	}
	return items, nil
}

// Detail fetches the full record for one anime.
func (c *JikanClient) Detail(ctx context.Context, id int64) (*TitleDetail, error) {
	var payload jikanDetailResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/anime/%d", jikanBaseURL, id), &payload); err != nil {
		return nil, err
	}

	a := payload.Data
	detail := &TitleDetail{
		Item:       normalizeJikanAnime(a),
		Episodes:   a.Episodes,
		Status:     a.Status,
		TrailerURL: a.Trailer.URL,
	}
	for _, g := range a.Genres {
		detail.Genres = append(detail.Genres, Genre{ID: g.MalID, Name: g.Name})
	}
	for _, s := range a.Studios {
		detail.Studios = append(detail.Studios, s.Name)
	}
	return detail, nil
}

// Characters fetches the character/cast list for one anime.
func (c *JikanClient) Characters(ctx context.Context, id int64) ([]CastMember, error) {
	var payload jikanCharactersResponse
	if err := c.doGET(ctx, fmt.Sprintf("%s/anime/%d/characters", jikanBaseURL, id), &payload); err != nil {
		return nil, err
	}

	cast := make([]CastMember, 0, len(payload.Data))
	for _, entry := range payload.Data {
		cast = append(cast, CastMember{
			ID:         entry.Character.MalID,
			Name:       entry.Character.Name,
			Character:  entry.Role,
			ProfileURL: pickJikanImage(entry.Character.Images),
		})
	}
	return cast, nil
}

// jikanOrderToken maps the recognized sort keys onto Jikan's order_by/sort
// pair. Popularity on Jikan is an ascending rank (1 = most popular).
func jikanOrderToken(key models.SortKey) (orderBy, sortDir string) {
	switch key {
	case models.SortTitle:
		return "title", "asc"
	case models.SortStartDate:
		return "start_date", "asc"
	default:
		return "popularity", "asc"
	}
}

func toJikanPage(payload jikanListResponse, page int) models.ListPage {
	items := make([]models.CatalogItem, 0, len(payload.Data))
	for _, a := range payload.Data {
		items = append(items, normalizeJikanAnime(a))
	}
	lastPage := payload.Pagination.LastVisiblePage
	if lastPage < 1 {
		lastPage = 1
	}
	return models.ListPage{
		Items:      items,
		LastPage:   lastPage,
		IsLastPage: !payload.Pagination.HasNextPage || page >= lastPage,
	}
}

// normalizeJikanAnime maps a raw anime record onto the cross-provider shape.
// Jikan has no backdrop concept, so the poster doubles as one.
func normalizeJikanAnime(a jikanAnime) models.CatalogItem {
	image := pickJikanImage(a.Images)
	return models.CatalogItem{
		ID:          a.MalID,
		Category:    models.CategoryAnime,
		Title:       pickTitle(a.Title, a.TitleEng),
		PosterURL:   image,
		BackdropURL: image,
		Overview:    a.Synopsis,
		PrimaryDate: parseDate(a.Aired.From, a.StartDate),
		Popularity:  float64(a.Members),
		VoteAverage: a.Score,
	}
}

// pickJikanImage prefers the webp large rendition, falling back through the
// jpg variants. All of them are already absolute URLs.
func pickJikanImage(img jikanImages) string {
	for _, candidate := range []string{
		img.WebP.LargeImageURL,
		img.JPG.LargeImageURL,
		img.WebP.ImageURL,
		img.JPG.ImageURL,
	} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

package catalog

import (
	"context"
	"net/http"
	"testing"

	"releaseradar/models"
)

func newTestJikanClient(fn roundTripFunc) *JikanClient {
	c := NewJikanClient(&http.Client{Transport: fn})
	c.minInterval = 0
	return c
}

func TestJikanDiscoverKeepsUpcomingStatus(t *testing.T) {
	var query map[string]string
	client := newTestJikanClient(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		query = map[string]string{
			"status":   q.Get("status"),
			"order_by": q.Get("order_by"),
			"sort":     q.Get("sort"),
		}
		return jsonResponse(http.StatusOK, `{"data":[],"pagination":{"last_visible_page":9,"has_next_page":true}}`), nil
	})

	page, err := client.Discover(context.Background(), 1, models.SortPopularity)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if query["status"] != "upcoming" {
		t.Errorf("status = %q, want upcoming", query["status"])
	}
	if query["order_by"] != "popularity" || query["sort"] != "asc" {
		t.Errorf("order = %s/%s, want popularity/asc", query["order_by"], query["sort"])
	}
	if page.LastPage != 9 {
		t.Errorf("LastPage = %d, want last_visible_page 9", page.LastPage)
	}
	if page.IsLastPage {
		t.Error("IsLastPage = true, want false while has_next_page")
	}
}

func TestJikanSearchAddsQuery(t *testing.T) {
	var gotQ string
	client := newTestJikanClient(func(req *http.Request) (*http.Response, error) {
		gotQ = req.URL.Query().Get("q")
		return jsonResponse(http.StatusOK, `{"data":[],"pagination":{"last_visible_page":1}}`), nil
	})

	if _, err := client.Search(context.Background(), "frieren", 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQ != "frieren" {
		t.Errorf("q = %q, want frieren", gotQ)
	}
}

func TestNormalizeJikanAnimeImageFallbacks(t *testing.T) {
	a := jikanAnime{MalID: 52991, Title: "Sousou no Frieren"}
	a.Images.JPG.LargeImageURL = "https://cdn.myanimelist.net/images/anime/1015/138006l.jpg"
	a.Aired.From = "2026-10-04T00:00:00+00:00"

	item := normalizeJikanAnime(a)

	if item.Category != models.CategoryAnime {
		t.Errorf("Category = %s", item.Category)
	}
	// No webp rendition: jpg large must be picked, and doubles as backdrop.
	if item.PosterURL != a.Images.JPG.LargeImageURL {
		t.Errorf("PosterURL = %q, want jpg fallback", item.PosterURL)
	}
	if item.BackdropURL != item.PosterURL {
		t.Errorf("BackdropURL = %q, want poster reused", item.BackdropURL)
	}
	if got := item.PrimaryDate.Format("2006-01-02"); got != "2026-10-04" {
		t.Errorf("PrimaryDate = %s, want aired.from date", got)
	}

	// webp wins when present.
	a.Images.WebP.LargeImageURL = "https://cdn.myanimelist.net/images/anime/1015/138006l.webp"
	if got := normalizeJikanAnime(a).PosterURL; got != a.Images.WebP.LargeImageURL {
		t.Errorf("PosterURL = %q, want webp preferred", got)
	}
}

func TestNormalizeJikanAnimeStartDateFallback(t *testing.T) {
	a := jikanAnime{MalID: 1, Title: "TBA Show", StartDate: "2027-01-01"}

	item := normalizeJikanAnime(a)
	if got := item.PrimaryDate.Format("2006-01-02"); got != "2027-01-01" {
		t.Errorf("PrimaryDate = %s, want start_date fallback", got)
	}

	unknown := normalizeJikanAnime(jikanAnime{MalID: 2, Title: "No Date"})
	if !unknown.PrimaryDate.IsZero() {
		t.Errorf("PrimaryDate = %v, want zero for missing dates", unknown.PrimaryDate)
	}
}

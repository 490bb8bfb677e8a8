package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"releaseradar/handlers"
	"releaseradar/models"
	"releaseradar/services/upcoming"
)

type stubUpcoming struct {
	lastRequest upcoming.ListRequest
	page        models.ListPage
}

func (s *stubUpcoming) List(_ context.Context, req upcoming.ListRequest) models.ListPage {
	s.lastRequest = req
	return s.page
}

func (s *stubUpcoming) Trending(context.Context) []models.CatalogItem { return nil }

func (s *stubUpcoming) Anticipated(context.Context) upcoming.MostAnticipated {
	return upcoming.MostAnticipated{
		Movies: []models.CatalogItem{},
		Series: []models.CatalogItem{},
		Anime:  []models.CatalogItem{},
	}
}

func (s *stubUpcoming) Genre(context.Context, models.Category, string) []models.CatalogItem {
	return nil
}

func TestUpcomingListParsesQuery(t *testing.T) {
	stub := &stubUpcoming{page: models.ListPage{
		Items:      []models.CatalogItem{{ID: 1, Category: models.CategoryMovies, Title: "Dune Part Three"}},
		LastPage:   4,
		IsLastPage: false,
	}}
	h := handlers.NewUpcomingHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/upcoming?category=movies&query=dune&sort=start_date&page=2", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	want := upcoming.ListRequest{
		Category: models.CategoryMovies,
		Query:    "dune",
		SortKey:  models.SortStartDate,
		Page:     2,
	}
	if stub.lastRequest != want {
		t.Fatalf("unexpected request forwarded: %+v", stub.lastRequest)
	}

	var page models.ListPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(page.Items) != 1 || page.LastPage != 4 || page.IsLastPage {
		t.Fatalf("unexpected page returned: %+v", page)
	}
}

func TestUpcomingListRejectsBadInput(t *testing.T) {
	h := handlers.NewUpcomingHandler(&stubUpcoming{})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/upcoming?category=books", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/upcoming?category=movies&page=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid page, got %d", rec.Code)
	}
}

func TestTrendingAlwaysReturnsItemsArray(t *testing.T) {
	h := handlers.NewUpcomingHandler(&stubUpcoming{})

	rec := httptest.NewRecorder()
	h.Trending(rec, httptest.NewRequest(http.MethodGet, "/api/trending", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(resp["items"]) != "[]" {
		t.Fatalf("expected empty items array, got %s", resp["items"])
	}
}

func TestGenreListReturnsDefinitions(t *testing.T) {
	h := handlers.NewUpcomingHandler(&stubUpcoming{})

	rec := httptest.NewRecorder()
	h.GenreList(rec, httptest.NewRequest(http.MethodGet, "/api/genres?category=anime", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Genres []models.GenreDef `json:"genres"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Genres) == 0 {
		t.Fatal("expected anime genre definitions")
	}
}

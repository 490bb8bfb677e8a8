package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"releaseradar/models"
	"releaseradar/services/upcoming"
)

type upcomingService interface {
	List(ctx context.Context, req upcoming.ListRequest) models.ListPage
	Trending(ctx context.Context) []models.CatalogItem
	Anticipated(ctx context.Context) upcoming.MostAnticipated
	Genre(ctx context.Context, category models.Category, slug string) []models.CatalogItem
}

var _ upcomingService = (*upcoming.Service)(nil)

// UpcomingHandler serves the browse, trending, most-anticipated, and genre
// surfaces. The aggregator never returns errors, so every response here is a
// 200 with a possibly empty payload; only malformed requests get a 4xx.
type UpcomingHandler struct {
	Service upcomingService
}

func NewUpcomingHandler(service upcomingService) *UpcomingHandler {
	return &UpcomingHandler{Service: service}
}

func categoryAndSlug(r *http.Request) (models.Category, string, bool) {
	vars := mux.Vars(r)
	category, err := models.ParseCategory(vars["category"])
	if err != nil {
		return "", "", false
	}
	return category, strings.TrimSpace(vars["slug"]), true
}

// List handles GET /api/upcoming?category=&query=&sort=&page=&genre=.
func (h *UpcomingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category, err := models.ParseCategory(q.Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page := 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	req := upcoming.ListRequest{
		Category:  category,
		Query:     strings.TrimSpace(q.Get("query")),
		SortKey:   models.ParseSortKey(q.Get("sort")),
		Page:      page,
		GenreSlug: strings.TrimSpace(q.Get("genre")),
	}

	result := h.Service.List(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Trending handles GET /api/trending.
func (h *UpcomingHandler) Trending(w http.ResponseWriter, r *http.Request) {
	items := h.Service.Trending(r.Context())
	if items == nil {
		items = []models.CatalogItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// Anticipated handles GET /api/most-anticipated.
func (h *UpcomingHandler) Anticipated(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Anticipated(r.Context()))
}

// GenreList handles GET /api/genres?category= (the genre definitions).
func (h *UpcomingHandler) GenreList(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"genres": models.GenresForCategory(category)})
}

// Genre handles GET /api/genres/{category}/{slug} (the collected titles).
func (h *UpcomingHandler) Genre(w http.ResponseWriter, r *http.Request) {
	category, slug, ok := categoryAndSlug(r)
	if !ok {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	items := h.Service.Genre(r.Context(), category, slug)
	if items == nil {
		items = []models.CatalogItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": items})
}

func (h *UpcomingHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

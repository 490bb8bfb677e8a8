package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"releaseradar/models"
	"releaseradar/services/bookmarks"
	"releaseradar/services/watchlist"
)

type watchlistService interface {
	Materialize(ctx context.Context, entries []models.BookmarkEntry) models.WatchlistBuckets
}

var _ watchlistService = (*watchlist.Service)(nil)

// WatchlistHandler materializes the current bookmark set into bucketed cards.
type WatchlistHandler struct {
	Service watchlistService
	Store   *bookmarks.Store
}

func NewWatchlistHandler(service watchlistService, store *bookmarks.Store) *WatchlistHandler {
	return &WatchlistHandler{Service: service, Store: store}
}

// Get handles GET /api/watchlist.
func (h *WatchlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	buckets := h.Service.Materialize(r.Context(), h.Store.Snapshot())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(buckets)
}

func (h *WatchlistHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

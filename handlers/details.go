package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"releaseradar/models"
	"releaseradar/services/catalog"
)

type movieTVCatalog interface {
	Detail(ctx context.Context, category models.Category, id int64) (*catalog.TitleDetail, error)
	Credits(ctx context.Context, category models.Category, id int64) ([]catalog.CastMember, error)
	Trailers(ctx context.Context, category models.Category, id int64) ([]catalog.Trailer, error)
}

type animeCatalog interface {
	Detail(ctx context.Context, id int64) (*catalog.TitleDetail, error)
	Characters(ctx context.Context, id int64) ([]catalog.CastMember, error)
}

var _ movieTVCatalog = (*catalog.TMDBClient)(nil)
var _ animeCatalog = (*catalog.JikanClient)(nil)

// DetailsHandler serves the full title page payload: detail plus cast plus
// trailers for movies and series, detail plus characters for anime.
type DetailsHandler struct {
	Movies movieTVCatalog
	Anime  animeCatalog
}

func NewDetailsHandler(movies movieTVCatalog, anime animeCatalog) *DetailsHandler {
	return &DetailsHandler{Movies: movies, Anime: anime}
}

type detailsResponse struct {
	Detail *catalog.TitleDetail `json:"detail"`
	Cast   []catalog.CastMember `json:"cast"`
	Extras []catalog.Trailer    `json:"trailers,omitempty"`
}

// Get handles GET /api/details/{category}/{id}.
func (h *DetailsHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	category, err := models.ParseCategory(vars["category"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var resp detailsResponse

	if category == models.CategoryAnime {
		detail, err := h.Anime.Detail(ctx, id)
		if err != nil {
			http.Error(w, "title not found", http.StatusNotFound)
			return
		}
		resp.Detail = detail
		if cast, err := h.Anime.Characters(ctx, id); err == nil {
			resp.Cast = cast
		} else {
			log.Printf("[details] characters lookup failed for %d: %v", id, err)
		}
	} else {
		detail, err := h.Movies.Detail(ctx, category, id)
		if err != nil {
			http.Error(w, "title not found", http.StatusNotFound)
			return
		}
		resp.Detail = detail
		if cast, err := h.Movies.Credits(ctx, category, id); err == nil {
			resp.Cast = cast
		} else {
			log.Printf("[details] credits lookup failed for %s/%d: %v", category, id, err)
		}
		if trailers, err := h.Movies.Trailers(ctx, category, id); err == nil {
			resp.Extras = trailers
		} else {
			log.Printf("[details] trailers lookup failed for %s/%d: %v", category, id, err)
		}
	}

	if resp.Cast == nil {
		resp.Cast = []catalog.CastMember{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *DetailsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

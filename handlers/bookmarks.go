package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"releaseradar/models"
	"releaseradar/services/bookmarks"
)

// BookmarksHandler exposes the in-memory bookmark set and the identity
// switch driving the reconciler. Mutations return as soon as the store is
// updated; persistence settles behind the response.
type BookmarksHandler struct {
	Store      *bookmarks.Store
	Reconciler *bookmarks.Reconciler
	Users      interface{ Exists(id string) bool }
}

func NewBookmarksHandler(store *bookmarks.Store, reconciler *bookmarks.Reconciler, users interface{ Exists(id string) bool }) *BookmarksHandler {
	return &BookmarksHandler{Store: store, Reconciler: reconciler, Users: users}
}

// List handles GET /api/bookmarks.
func (h *BookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.Store.Snapshot()
	if entries == nil {
		entries = []models.BookmarkEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"bookmarks": entries,
		"state":     h.Reconciler.State().String(),
		"userId":    h.Reconciler.UserID(),
	})
}

// Add handles POST /api/bookmarks.
func (h *BookmarksHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       int64  `json:"id"`
		Category string `json:"category"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category, err := models.ParseCategory(body.Category)
	if err != nil || body.ID <= 0 {
		http.Error(w, "id and category are required", http.StatusBadRequest)
		return
	}

	added := h.Store.Add(models.BookmarkEntry{
		ID:        body.ID,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"added": added})
}

// Remove handles DELETE /api/bookmarks/{category}/{id}.
func (h *BookmarksHandler) Remove(w http.ResponseWriter, r *http.Request) {
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

	h.Store.Remove(models.BookmarkEntry{ID: id, Category: category})
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles POST /api/bookmarks/clear.
func (h *BookmarksHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Reconciler.ClearAll(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetIdentity handles POST /api/bookmarks/identity. An empty userId switches
// back to the signed-out local set; a known userId runs the migration and
// rehydrates from the remote set.
func (h *BookmarksHandler) SetIdentity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if body.UserID != "" && !h.Users.Exists(body.UserID) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	h.Reconciler.SetIdentity(body.UserID)

	entries := h.Store.Snapshot()
	if entries == nil {
		entries = []models.BookmarkEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"bookmarks": entries,
		"state":     h.Reconciler.State().String(),
		"userId":    body.UserID,
	})
}

func (h *BookmarksHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

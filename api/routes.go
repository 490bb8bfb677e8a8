package api

import (
	"net/http"

	"releaseradar/handlers"

	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	upcomingHandler *handlers.UpcomingHandler,
	detailsHandler *handlers.DetailsHandler,
	bookmarksHandler *handlers.BookmarksHandler,
	watchlistHandler *handlers.WatchlistHandler,
	usersHandler *handlers.UsersHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Browse surfaces
	api.HandleFunc("/upcoming", upcomingHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/upcoming", upcomingHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/trending", upcomingHandler.Trending).Methods(http.MethodGet)
	api.HandleFunc("/trending", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/most-anticipated", upcomingHandler.Anticipated).Methods(http.MethodGet)
	api.HandleFunc("/most-anticipated", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/genres", upcomingHandler.GenreList).Methods(http.MethodGet)
	api.HandleFunc("/genres", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/genres/{category}/{slug}", upcomingHandler.Genre).Methods(http.MethodGet)
	api.HandleFunc("/genres/{category}/{slug}", handleOptions).Methods(http.MethodOptions)

	// Title detail
	api.HandleFunc("/details/{category}/{id}", detailsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/details/{category}/{id}", detailsHandler.Options).Methods(http.MethodOptions)

	// Bookmarks
	api.HandleFunc("/bookmarks", bookmarksHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/bookmarks", bookmarksHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/bookmarks", bookmarksHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/bookmarks/clear", bookmarksHandler.Clear).Methods(http.MethodPost)
	api.HandleFunc("/bookmarks/clear", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/bookmarks/identity", bookmarksHandler.SetIdentity).Methods(http.MethodPost)
	api.HandleFunc("/bookmarks/identity", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/bookmarks/{category}/{id}", bookmarksHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/bookmarks/{category}/{id}", handleOptions).Methods(http.MethodOptions)

	// Watchlist
	api.HandleFunc("/watchlist", watchlistHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", watchlistHandler.Options).Methods(http.MethodOptions)

	// Users and auth
	api.HandleFunc("/users", usersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", usersHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users", usersHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}", usersHandler.Rename).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}", usersHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}", usersHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/color", usersHandler.SetColor).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/color", usersHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/pin", usersHandler.SetPin).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/pin", usersHandler.ClearPin).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/pin", usersHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/auth/login", usersHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", usersHandler.Options).Methods(http.MethodOptions)

	// Settings
	api.HandleFunc("/settings", settingsHandler.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.PutSettings).Methods(http.MethodPut)
	api.HandleFunc("/settings", settingsHandler.Options).Methods(http.MethodOptions)
}

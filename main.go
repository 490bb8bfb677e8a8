package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"releaseradar/api"
	"releaseradar/config"
	"releaseradar/handlers"
	"releaseradar/internal/database"
	"releaseradar/services/bookmarks"
	"releaseradar/services/catalog"
	"releaseradar/services/upcoming"
	"releaseradar/services/users"
	"releaseradar/services/watchlist"
	"releaseradar/utils"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("releaseradar backend starting...")

	configPath := os.Getenv("RELEASERADAR_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	if settings.Providers.TMDBAccessToken == "" {
		log.Printf("warning: no TMDB access token configured; movie and series listings will be empty")
	}

	// Upstream catalog clients
	tmdbClient := catalog.NewTMDBClient(settings.Providers.TMDBAccessToken, settings.Providers.Language, nil)
	jikanClient := catalog.NewJikanClient(nil)

	// Aggregation
	upcomingService := upcoming.NewService(tmdbClient, jikanClient, settings.Aggregation)
	upcomingHandler := handlers.NewUpcomingHandler(upcomingService)
	detailsHandler := handlers.NewDetailsHandler(tmdbClient, jikanClient)

	// Users
	userService, err := users.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to initialise users: %v", err)
	}
	usersHandler := handlers.NewUsersHandler(userService)

	// Bookmark persistence: sqlite per-user store plus a local JSON tier for
	// the signed-out set.
	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("failed to open bookmark database: %v", err)
	}
	defer db.Close()

	bookmarkRepo := database.NewBookmarkRepository(db.Connection())
	bookmarkStore := bookmarks.NewStore()
	localStore := bookmarks.NewLocalStore(afero.NewOsFs(), settings.Storage.Directory)
	reconciler := bookmarks.NewReconciler(bookmarkStore, localStore, bookmarkRepo)
	reconciler.SetIdentity("")

	bookmarksHandler := handlers.NewBookmarksHandler(bookmarkStore, reconciler, userService)

	// Watchlist
	watchlistService := watchlist.NewService(tmdbClient, jikanClient)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, bookmarkStore)

	settingsHandler := handlers.NewSettingsHandler(cfgManager)

	var r *mux.Router = utils.NewRouter()
	api.Register(
		r,
		upcomingHandler,
		detailsHandler,
		bookmarksHandler,
		watchlistHandler,
		usersHandler,
		settingsHandler,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Let in-flight remote bookmark writes settle before closing the database.
	reconciler.Flush()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server      ServerSettings      `json:"server"`
	Providers   ProviderSettings    `json:"providers"`
	Aggregation AggregationSettings `json:"aggregation"`
	Storage     StorageSettings     `json:"storage"`
	Database    DatabaseSettings    `json:"database"`
	Log         LogConfig           `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ProviderSettings configures the two upstream catalogs.
type ProviderSettings struct {
	TMDBAccessToken string `json:"tmdbAccessToken"`
	Language        string `json:"language"`
}

// AggregationSettings holds the tunables of the list aggregator. The grace
// window and caps are product policy that is plausibly subject to change, so
// they live in config rather than as hardcoded literals.
type AggregationSettings struct {
	// GraceWindowDays is the trailing day-count during which a just-passed
	// release date is still treated as upcoming for movies and series.
	// Anime is never date-filtered at list level.
	GraceWindowDays int `json:"graceWindowDays"`
	// EnrichmentLimit bounds the on-the-air detail fan-out per request.
	EnrichmentLimit int `json:"enrichmentLimit"`
	// GenreListCeiling caps genre list payloads.
	GenreListCeiling int `json:"genreListCeiling"`
	// AnticipatedPerCategory caps each category of the most-anticipated rows.
	AnticipatedPerCategory int `json:"anticipatedPerCategory"`
	// TrendingPerCategory bounds the round-robin interleave of the trending row.
	TrendingPerCategory int `json:"trendingPerCategory"`
	// DebounceMillis is the quiet period applied to free-text query requests.
	DebounceMillis int `json:"debounceMillis"`
}

type StorageSettings struct {
	// Directory holds the JSON-file tiers (users, guest bookmarks).
	Directory string `json:"directory"`
}

type DatabaseSettings struct {
	// Path is the sqlite file backing the remote per-user bookmark store.
	Path string `json:"path"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`    // MB per file
	MaxBackups int    `json:"maxBackups"` // old files to keep
	MaxAge     int    `json:"maxAge"`     // days
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns the configuration written on first run.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7878},
		Providers: ProviderSettings{
			TMDBAccessToken: "",
			Language:        "en-US",
		},
		Aggregation: AggregationSettings{
			GraceWindowDays:        7,
			EnrichmentLimit:        20,
			GenreListCeiling:       100,
			AnticipatedPerCategory: 25,
			TrendingPerCategory:    4,
			DebounceMillis:         500,
		},
		Storage:  StorageSettings{Directory: "data"},
		Database: DatabaseSettings{Path: "data/bookmarks.db"},
		Log: LogConfig{
			File:       "data/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir creates the directory containing the settings file.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk, creating the file with defaults if missing.
// Absent tunables are backfilled with their defaults so older settings files
// keep working after upgrades.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s := DefaultSettings()
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}
	applyFallbacks(&s)
	return s, nil
}

// Save writes settings atomically via a temp file and rename.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}

func applyFallbacks(s *Settings) {
	d := DefaultSettings()
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if s.Providers.Language == "" {
		s.Providers.Language = d.Providers.Language
	}
	if s.Aggregation.GraceWindowDays <= 0 {
		s.Aggregation.GraceWindowDays = d.Aggregation.GraceWindowDays
	}
	if s.Aggregation.EnrichmentLimit <= 0 {
		s.Aggregation.EnrichmentLimit = d.Aggregation.EnrichmentLimit
	}
	if s.Aggregation.GenreListCeiling <= 0 {
		s.Aggregation.GenreListCeiling = d.Aggregation.GenreListCeiling
	}
	if s.Aggregation.AnticipatedPerCategory <= 0 {
		s.Aggregation.AnticipatedPerCategory = d.Aggregation.AnticipatedPerCategory
	}
	if s.Aggregation.TrendingPerCategory <= 0 {
		s.Aggregation.TrendingPerCategory = d.Aggregation.TrendingPerCategory
	}
	if s.Aggregation.DebounceMillis <= 0 {
		s.Aggregation.DebounceMillis = d.Aggregation.DebounceMillis
	}
	if s.Storage.Directory == "" {
		s.Storage.Directory = d.Storage.Directory
	}
	if s.Database.Path == "" {
		s.Database.Path = d.Database.Path
	}
	if s.Log.MaxSize == 0 {
		s.Log.MaxSize = d.Log.MaxSize
	}
}

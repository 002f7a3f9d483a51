// Package config builds the single configuration struct the rest of
// the program receives by reference. All values come from the
// environment (optionally seeded from a .env file); there is no
// interactive input and no process-wide mutable state.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tracklake/internal/track"
)

// Config holds every externally-sourced setting for one run.
type Config struct {
	// Spotify API credentials (SPOTIFY_ID / SPOTIFY_SECRET).
	SpotifyID     string
	SpotifySecret string

	// PlaylistID is the target playlist (TRACKLAKE_PLAYLIST_ID).
	PlaylistID string

	// Sinks is the raw destination selector, e.g. "mongo,postgres".
	Sinks string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	PostgresDSN     string
	CSVPath         string

	PopularityThreshold int
	ReleaseCutoff       string

	// Strict aborts the run on the first malformed record instead of
	// skipping it.
	Strict bool
}

// Load reads the environment into a Config. When envFile is non-empty
// the file is required; otherwise a .env in the working directory is
// loaded when present.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvPrefix("TRACKLAKE")
	v.AutomaticEnv()

	_ = v.BindEnv("spotify_id", "SPOTIFY_ID")
	_ = v.BindEnv("spotify_secret", "SPOTIFY_SECRET")

	v.SetDefault("sinks", "mongo,postgres")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "music")
	v.SetDefault("mongo_collection", "spotify_tracks")
	v.SetDefault("postgres_dsn", "postgres://localhost:5432/music")
	v.SetDefault("csv_path", "spotify_tracks.csv")
	v.SetDefault("popularity_threshold", track.DefaultPopularityThreshold)
	v.SetDefault("release_cutoff", track.DefaultReleaseCutoff)
	v.SetDefault("strict", false)

	return &Config{
		SpotifyID:           v.GetString("spotify_id"),
		SpotifySecret:       v.GetString("spotify_secret"),
		PlaylistID:          v.GetString("playlist_id"),
		Sinks:               v.GetString("sinks"),
		MongoURI:            v.GetString("mongo_uri"),
		MongoDatabase:       v.GetString("mongo_database"),
		MongoCollection:     v.GetString("mongo_collection"),
		PostgresDSN:         v.GetString("postgres_dsn"),
		CSVPath:             v.GetString("csv_path"),
		PopularityThreshold: v.GetInt("popularity_threshold"),
		ReleaseCutoff:       v.GetString("release_cutoff"),
		Strict:              v.GetBool("strict"),
	}, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case c.SpotifyID == "" || c.SpotifySecret == "":
		return fmt.Errorf("SPOTIFY_ID and SPOTIFY_SECRET must be set")
	case c.PlaylistID == "":
		return fmt.Errorf("a playlist id is required (TRACKLAKE_PLAYLIST_ID or --playlist)")
	case c.ReleaseCutoff == "":
		return fmt.Errorf("release cutoff must not be empty")
	}
	return nil
}

// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	Admin     AdminConfig             `yaml:"admin"`
	DJ        DJConfig                `yaml:"dj"`
	Crossfade CrossfadeConfig         `yaml:"crossfade"`
	Player    PlayerConfig            `yaml:"player"`
	Search    SearchConfig            `yaml:"search"`
	Store     StoreConfig             `yaml:"store"`
	Filters   map[string]FilterConfig `yaml:"filters"`
	Modes     ModesConfig             `yaml:"modes"`
	Spotify   SpotifyConfig           `yaml:"spotify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// DJConfig holds the discovery thresholds and limits of the session controller.
type DJConfig struct {
	RawCandidateTarget int    `yaml:"raw_candidate_target" default:"50" validate:"gte=1"`
	GenreTierThreshold int    `yaml:"genre_tier_threshold" default:"20" validate:"gte=0"`
	LanguageQueryLimit int    `yaml:"language_query_limit" default:"10" validate:"gte=1,lte=10"`
	GenreQueryLimit    int    `yaml:"genre_query_limit" default:"3" validate:"gte=0,lte=8"`
	SeedAppendCount    int    `yaml:"seed_append_count" default:"10" validate:"gte=1"`
	ModeQueueSize      int    `yaml:"mode_queue_size" default:"20" validate:"gte=1"`
	ModeLookahead      int    `yaml:"mode_lookahead" default:"10" validate:"gte=1"`
	RefillThreshold    int    `yaml:"refill_threshold" default:"3" validate:"gte=0"`
	StateKey           string `yaml:"state_key" default:"dj-state"`
}

// CrossfadeConfig holds the transition settings applied at startup.
type CrossfadeConfig struct {
	DurationSec float64 `yaml:"duration_sec" default:"7" validate:"gt=0,lte=30"`
	GapSec      float64 `yaml:"gap_sec" default:"0.5" validate:"gte=0,lte=10"`
	Curve       string  `yaml:"curve" default:"smooth" validate:"oneof=linear exponential smooth"`
	Type        string  `yaml:"type" default:"crossfade" validate:"oneof=crossfade cut beatmatch"`
	Volume      float64 `yaml:"volume" default:"0.8" validate:"gte=0,lte=1"`
}

// Duration returns the crossfade duration.
func (c CrossfadeConfig) Duration() time.Duration {
	return time.Duration(c.DurationSec * float64(time.Second))
}

// Gap returns the gap duration.
func (c CrossfadeConfig) Gap() time.Duration {
	return time.Duration(c.GapSec * float64(time.Second))
}

// PlayerConfig represents host player configuration.
type PlayerConfig struct {
	TickMs       int     `yaml:"tick_ms" default:"100" validate:"gte=10,lte=5000"`
	LeadSec      float64 `yaml:"lead_sec" default:"2" validate:"gte=0"`
	AutoPlayNext *bool   `yaml:"auto_play_next" default:"true"`
	// Probe makes audio channels fetch preview headers before playback.
	Probe bool `yaml:"probe"`
}

// Tick returns the scheduling tick interval.
func (p PlayerConfig) Tick() time.Duration {
	return time.Duration(p.TickMs) * time.Millisecond
}

// Lead returns how long before the crossfade window a transition is armed.
func (p PlayerConfig) Lead() time.Duration {
	return time.Duration(p.LeadSec * float64(time.Second))
}

// SearchConfig represents track search configuration.
type SearchConfig struct {
	Providers    []ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`
	DisableCache bool             `yaml:"disable_cache"`
}

// ProviderConfig represents a single search provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings"`
}

// StoreConfig represents the persistent store configuration.
type StoreConfig struct {
	Type string `yaml:"type" default:"file" validate:"oneof=memory file sqlite"`
	// Path is a directory for the file store and a database file for sqlite.
	Path string `yaml:"path" default:"data"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// ModesConfig represents the DJ mode catalog configuration.
type ModesConfig struct {
	// File replaces the builtin catalog when set.
	File string `yaml:"file"`
}

// SpotifyConfig represents Spotify API configuration.
// Credentials are only required when a spotify search provider is configured.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"IN"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse builds a configuration from YAML data, applying environment
// overrides and defaults before validation.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if len(cfg.Search.Providers) == 0 {
		cfg.Search.Providers = []ProviderConfig{{Type: "itunes", DisplayName: "iTunes"}}
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("VIBEBOX_SEARCH_BASE_URL"); v != "" {
		for i := range c.Search.Providers {
			if c.Search.Providers[i].Type == "itunes" {
				if c.Search.Providers[i].Settings == nil {
					c.Search.Providers[i].Settings = make(map[string]any)
				}
				c.Search.Providers[i].Settings["base_url"] = v
				break
			}
		}
	}
	if v := os.Getenv("VIBEBOX_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateSpotify(); err != nil {
		return err
	}

	return nil
}

// validateSpotify checks that credentials exist when a spotify provider is configured.
func (c *Config) validateSpotify() error {
	if !c.UsesProvider("spotify") {
		return nil
	}
	switch {
	case c.Spotify.ClientID == "":
		return errors.New("spotify provider configured but ClientID is empty")
	case c.Spotify.ClientSecret == "":
		return errors.New("spotify provider configured but ClientSecret is empty")
	case c.Spotify.RefreshToken == "":
		return errors.New("spotify provider configured but RefreshToken is empty")
	}
	return nil
}

// UsesProvider reports whether a search provider of the given type is configured.
func (c *Config) UsesProvider(providerType string) bool {
	for _, p := range c.Search.Providers {
		if p.Type == providerType {
			return true
		}
	}
	return false
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// AutoPlayNext reports whether the host advances to the next track on its own.
func (c *Config) AutoPlayNext() bool {
	return c.Player.AutoPlayNext == nil || *c.Player.AutoPlayNext
}

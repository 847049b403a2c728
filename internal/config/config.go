package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/agrodecision/agrodecision/internal/enviro"
)

// AppConfig holds the process configuration, resolved from the environment
// once at startup.
type AppConfig struct {
	Port string `envconfig:"PORT" default:"8080"`

	// RulesDir is the directory holding one threshold CSV per category.
	RulesDir string `envconfig:"RULES_DIR" default:"data/reference"`

	// ProviderTimeout is the budget for one outbound provider call.
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"5s"`

	// ReadingMaxAge bounds how old a cached reading may be before a new
	// analysis re-queries the providers.
	ReadingMaxAge time.Duration `envconfig:"READING_MAX_AGE" default:"30m"`

	// FetchInterval controls how often tracked sites are refreshed.
	FetchInterval time.Duration `envconfig:"FETCH_INTERVAL" default:"15m"`

	// Reading cache retention.
	StoreMaxHistory int           `envconfig:"STORE_MAX_HISTORY" default:"96"`
	StoreMaxAge     time.Duration `envconfig:"STORE_MAX_AGE" default:"24h"`

	// TrackedSites is a semicolon-separated list of "lat,lon" pairs the
	// scheduler keeps warm, e.g. "-12.0464,-77.0428;4.6097,-74.0817".
	TrackedSites string `envconfig:"TRACKED_SITES"`

	// GoogleGeocoderAPIKey enables the Google-backed fallback geocoder.
	GoogleGeocoderAPIKey string `envconfig:"GOOGLE_GEOCODER_API_KEY"`
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Fail fast on a malformed site list rather than at the first tick.
	if _, err := cfg.Sites(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Sites parses TrackedSites into coordinates.
func (c *AppConfig) Sites() ([]enviro.Coordinate, error) {
	raw := strings.TrimSpace(c.TrackedSites)
	if raw == "" {
		return nil, nil
	}

	var sites []enviro.Coordinate
	for _, pair := range strings.Split(raw, ";") {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid TRACKED_SITES entry %q: want \"lat,lon\"", pair)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in TRACKED_SITES entry %q: %w", pair, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in TRACKED_SITES entry %q: %w", pair, err)
		}

		sites = append(sites, enviro.Coordinate{Lat: lat, Lon: lon})
	}

	return sites, nil
}

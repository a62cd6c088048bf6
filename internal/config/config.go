// Package config loads and validates the service configuration from a YAML
// file with environment-variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Places   PlacesConfig   `yaml:"places"`
	Events   EventsConfig   `yaml:"events"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name               string  `yaml:"name"`
	DefaultRadiusMiles int     `yaml:"default_radius_miles"` // Search radius when none given
	MaxRadiusMiles     int     `yaml:"max_radius_miles"`     // Requested radii are capped here
	DefaultLatitude    float64 `yaml:"default_latitude"`     // Fallback origin when geocoding fails
	DefaultLongitude   float64 `yaml:"default_longitude"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"ssl_mode"`
	QueryTimeout time.Duration `yaml:"query_timeout"` // Per-repo-call timeout
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds the optional Redis cache settings. An empty address
// selects the in-memory cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PlacesConfig holds settings for the external places/geocoding API.
type PlacesConfig struct {
	APIKey         string        `yaml:"api_key"`
	PlacesBaseURL  string        `yaml:"places_base_url"`
	GeocodeBaseURL string        `yaml:"geocode_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RPS            float64       `yaml:"rps"`   // Requests per second to the API
	Burst          int           `yaml:"burst"` // Token bucket burst

	// Cache TTLs per response class.
	NearbyTTL  time.Duration `yaml:"nearby_ttl"`
	DetailsTTL time.Duration `yaml:"details_ttl"`
	GeocodeTTL time.Duration `yaml:"geocode_ttl"`
}

// EventsConfig holds settings for the external events API.
type EventsConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BaseURL        string        `yaml:"base_url"`
	Token          string        `yaml:"token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RPS            float64       `yaml:"rps"`
	Burst          int           `yaml:"burst"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

// Default returns the configuration used when a field is absent from the
// YAML file.
func Default() Config {
	return Config{
		App: AppConfig{
			Name:               "Accessible Outings Finder",
			DefaultRadiusMiles: 30,
			MaxRadiusMiles:     60,
			DefaultLatitude:    43.2081,
			DefaultLongitude:   -71.5376,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Name:         "accessible_outings",
			SSLMode:      "disable",
			QueryTimeout: 5 * time.Second,
		},
		Places: PlacesConfig{
			PlacesBaseURL:  "https://maps.googleapis.com/maps/api/place",
			GeocodeBaseURL: "https://maps.googleapis.com/maps/api/geocode/json",
			RequestTimeout: 30 * time.Second,
			RPS:            5,
			Burst:          10,
			NearbyTTL:      24 * time.Hour,
			DetailsTTL:     7 * 24 * time.Hour,
			GeocodeTTL:     30 * 24 * time.Hour,
		},
		Events: EventsConfig{
			BaseURL:        "https://www.eventbriteapi.com/v3",
			RequestTimeout: 30 * time.Second,
			RPS:            2,
			Burst:          5,
			CacheTTL:       6 * time.Hour,
		},
	}
}

// Load reads the YAML file at path, applies environment overrides, and
// validates the result. An empty path loads defaults plus overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv overlays deployment secrets and connection details from the
// environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASS"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("PLACES_API_KEY"); v != "" {
		c.Places.APIKey = v
	}
	if v := os.Getenv("EVENTS_API_TOKEN"); v != "" {
		c.Events.Token = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.App.DefaultRadiusMiles <= 0 {
		return fmt.Errorf("default_radius_miles must be positive, got %d", c.App.DefaultRadiusMiles)
	}
	if c.App.MaxRadiusMiles < c.App.DefaultRadiusMiles {
		return fmt.Errorf("max_radius_miles %d is below default_radius_miles %d",
			c.App.MaxRadiusMiles, c.App.DefaultRadiusMiles)
	}
	if c.App.DefaultLatitude < -90 || c.App.DefaultLatitude > 90 {
		return fmt.Errorf("default_latitude %v out of range", c.App.DefaultLatitude)
	}
	if c.App.DefaultLongitude < -180 || c.App.DefaultLongitude > 180 {
		return fmt.Errorf("default_longitude %v out of range", c.App.DefaultLongitude)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("database query_timeout must be positive, got %v", c.Database.QueryTimeout)
	}
	if c.Places.RPS <= 0 || c.Places.Burst <= 0 {
		return fmt.Errorf("places rps/burst must be positive, got %v/%d", c.Places.RPS, c.Places.Burst)
	}
	if c.Events.Enabled && c.Events.BaseURL == "" {
		return fmt.Errorf("events base_url is required when events are enabled")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/safetrace/safetrace-backend-go/internal/database"
	"github.com/safetrace/safetrace-backend-go/internal/logger"
	"github.com/safetrace/safetrace-backend-go/internal/scoring"
)

// Config is the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  database.Config `yaml:"database"`
	Network   NetworkConfig   `yaml:"network"`
	Trip      TripConfig      `yaml:"trip"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Routing   RoutingConfig   `yaml:"routing"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       logger.Config   `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port" validate:"required"`
	Mode            string        `yaml:"mode" validate:"oneof=debug release test"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// NetworkConfig points at the static segment data
type NetworkConfig struct {
	SegmentsPath string `yaml:"segments_path" validate:"required"`
	Watch        bool   `yaml:"watch"`
}

// TripConfig holds trip detection thresholds and session lifetime
type TripConfig struct {
	StartSpeed      float64       `yaml:"start_speed" validate:"gt=0"`
	StillSpeed      float64       `yaml:"still_speed" validate:"gt=0,ltfield=StartSpeed"`
	MaxStillSamples int           `yaml:"max_still_samples" validate:"gte=0"`
	SessionTTL      time.Duration `yaml:"session_ttl" validate:"gt=0"`
	MaxSessions     int           `yaml:"max_sessions" validate:"gte=1"`
}

// ScoringConfig holds the scoring tables and refresh cadence
type ScoringConfig struct {
	DecayPerDay     float64               `yaml:"decay_per_day" validate:"gte=0"`
	TagModifiers    map[string]float64    `yaml:"tag_modifiers"`
	PersonaRules    []scoring.PersonaRule `yaml:"persona_rules" validate:"dive"`
	RefreshInterval time.Duration         `yaml:"refresh_interval" validate:"gte=0"`
	Persist         bool                  `yaml:"persist"`
}

// RoutingConfig holds route cache settings
type RoutingConfig struct {
	CacheSize int `yaml:"cache_size" validate:"gte=0"`
}

// AuthConfig holds JWT settings for feedback submitters
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	Required  bool          `yaml:"required"`
	TokenTTL  time.Duration `yaml:"token_ttl" validate:"gt=0"`
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled"`
	Limit   int           `yaml:"limit" validate:"gte=1"`
	Window  time.Duration `yaml:"window" validate:"gt=0"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			Mode:            "release",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: database.Config{
			Path:         "./data/safetrace.db",
			MaxOpenConns: 10,
		},
		Network: NetworkConfig{
			SegmentsPath: "./data/segments.json",
		},
		Trip: TripConfig{
			StartSpeed:      0.8,
			StillSpeed:      0.5,
			MaxStillSamples: 2,
			SessionTTL:      2 * time.Hour,
			MaxSessions:     10000,
		},
		Scoring: ScoringConfig{
			DecayPerDay:     scoring.DefaultDecayPerDay,
			TagModifiers:    scoring.DefaultTagModifiers(),
			PersonaRules:    scoring.DefaultPersonaRules(),
			RefreshInterval: time.Minute,
			Persist:         true,
		},
		Routing: RoutingConfig{
			CacheSize: 1024,
		},
		Auth: AuthConfig{
			Issuer:   "safetrace",
			TokenTTL: 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Limit:   120,
			Window:  time.Minute,
		},
		Log: logger.Config{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_PATH, then .env, then environment variables
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	// A missing .env file is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays a YAML file onto the configuration
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto the configuration
func (c *Config) ApplyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Mode = getEnv("GIN_MODE", c.Server.Mode)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Network.SegmentsPath = getEnv("SEGMENTS_PATH", c.Network.SegmentsPath)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	var err error
	if c.Network.Watch, err = getEnvBool("WATCH_SEGMENTS", c.Network.Watch); err != nil {
		return err
	}
	if c.Auth.Required, err = getEnvBool("AUTH_REQUIRED", c.Auth.Required); err != nil {
		return err
	}
	if c.RateLimit.Enabled, err = getEnvBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled); err != nil {
		return err
	}
	if c.Log.Development, err = getEnvBool("LOG_DEVELOPMENT", c.Log.Development); err != nil {
		return err
	}
	if c.RateLimit.Limit, err = getEnvInt("RATE_LIMIT", c.RateLimit.Limit); err != nil {
		return err
	}
	if c.Routing.CacheSize, err = getEnvInt("ROUTE_CACHE_SIZE", c.Routing.CacheSize); err != nil {
		return err
	}
	if c.Scoring.RefreshInterval, err = getEnvDuration("SCORE_REFRESH_INTERVAL", c.Scoring.RefreshInterval); err != nil {
		return err
	}
	if c.Trip.SessionTTL, err = getEnvDuration("TRIP_SESSION_TTL", c.Trip.SessionTTL); err != nil {
		return err
	}
	return nil
}

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid configuration: auth.required needs a JWT secret")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

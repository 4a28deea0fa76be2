// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/amaumene/bestmovies/internal/constants"
	apperrors "github.com/amaumene/bestmovies/internal/errors"
)

const (
	// Default configuration file name
	defaultConfigFile = "config.json"
)

// Config holds the application configuration.
// It supports loading from a .env file, environment variables and a JSON file.
type Config struct {
	// OMDbAPIKey authenticates enrichment requests. It is only required once a
	// film detail is requested.
	OMDbAPIKey string `json:"OMDB_API_KEY"`

	// Endpoints
	BaseURL string `json:"BASE_URL"`
	OMDbURL string `json:"OMDB_URL"`

	// Storage settings
	CachePath    string `json:"CACHE_PATH"`
	CacheBackend string `json:"CACHE_BACKEND"`
	DatabasePath string `json:"DATABASE_PATH"`

	// HTTPTimeout of zero disables the client timeout.
	HTTPTimeout time.Duration `json:"-"`

	// Extraction settings
	RatingSource      string `json:"RATING_SOURCE"`
	TitleSuffixLength int    `json:"TITLE_SUFFIX_LENGTH"`

	LogLevel string `json:"LOG_LEVEL"`
}

// fileConfig mirrors Config for JSON decoding of fields that need conversion.
type fileConfig struct {
	Config
	HTTPTimeoutSeconds *int `json:"HTTP_TIMEOUT"`
}

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	return &Config{
		BaseURL:           constants.DefaultBaseURL,
		OMDbURL:           constants.DefaultOMDbURL,
		CachePath:         constants.DefaultCachePath,
		CacheBackend:      constants.CacheBackendFile,
		DatabasePath:      constants.DefaultDatabasePath,
		HTTPTimeout:       constants.DefaultHTTPTimeout,
		RatingSource:      constants.DefaultRatingSource,
		TitleSuffixLength: constants.TitleSuffixLength,
		LogLevel:          constants.DefaultLogLevel,
	}
}

// Load reads configuration from defaults, an optional JSON file and the
// environment, in that order of increasing precedence. A .env file in the
// working directory is loaded into the environment first; variables already
// set are not overridden.
// configFile may be empty, in which case CONFIG_FILE or config.json is used.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if configFile == "" {
		configFile = getEnvOrDefault("CONFIG_FILE", defaultConfigFile)
	}
	if err := cfg.loadFromFile(configFile); err != nil {
		// Ignore file not found errors
		if !os.IsNotExist(err) {
			return nil, apperrors.NewConfigurationError("failed to load config file", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() error {
	c.OMDbAPIKey = getEnvOrDefault("OMDB_API_KEY", c.OMDbAPIKey)
	c.BaseURL = getEnvOrDefault("BASE_URL", c.BaseURL)
	c.OMDbURL = getEnvOrDefault("OMDB_URL", c.OMDbURL)
	c.CachePath = getEnvOrDefault("CACHE_PATH", c.CachePath)
	c.CacheBackend = getEnvOrDefault("CACHE_BACKEND", c.CacheBackend)
	c.DatabasePath = getEnvOrDefault("DATABASE_PATH", c.DatabasePath)
	c.RatingSource = getEnvOrDefault("RATING_SOURCE", c.RatingSource)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.NewConfigurationError("HTTP_TIMEOUT must be a number of seconds", err)
		}
		c.HTTPTimeout = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("TITLE_SUFFIX_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.NewConfigurationError("TITLE_SUFFIX_LENGTH must be an integer", err)
		}
		c.TitleSuffixLength = n
	}

	return nil
}

// loadFromFile loads configuration from a JSON file.
func (c *Config) loadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	fc := fileConfig{Config: *c}
	if err := json.Unmarshal(data, &fc); err != nil {
		return err
	}

	*c = fc.Config
	if fc.HTTPTimeoutSeconds != nil {
		c.HTTPTimeout = time.Duration(*fc.HTTPTimeoutSeconds) * time.Second
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return apperrors.NewConfigurationError("BASE_URL must not be empty", nil)
	}
	if c.OMDbURL == "" {
		return apperrors.NewConfigurationError("OMDB_URL must not be empty", nil)
	}

	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))
	switch c.CacheBackend {
	case constants.CacheBackendFile, constants.CacheBackendBolt:
	default:
		return apperrors.NewConfigurationError(fmt.Sprintf("unknown cache backend %q", c.CacheBackend), nil)
	}

	if c.CachePath == "" || (c.CacheBackend == constants.CacheBackendBolt && c.CachePath == constants.DefaultCachePath) {
		if c.CacheBackend == constants.CacheBackendBolt {
			c.CachePath = constants.DefaultBoltPath
		} else {
			c.CachePath = constants.DefaultCachePath
		}
	}
	if c.DatabasePath == "" {
		return apperrors.NewConfigurationError("DATABASE_PATH must not be empty", nil)
	}
	if c.HTTPTimeout < 0 {
		return apperrors.NewConfigurationError("HTTP_TIMEOUT must not be negative", nil)
	}
	if c.TitleSuffixLength < 0 {
		return apperrors.NewConfigurationError("TITLE_SUFFIX_LENGTH must not be negative", nil)
	}
	if c.RatingSource == "" {
		c.RatingSource = constants.DefaultRatingSource
	}

	return nil
}

// DirectoryURL returns the absolute URL of the genre directory page.
func (c *Config) DirectoryURL() string {
	return c.BaseURL + constants.DirectoryPath
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

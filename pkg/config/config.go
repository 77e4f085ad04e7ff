// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultModel is used when TYSON_MODEL is not set.
const DefaultModel = "llama-3.1-sonar-large-128k-online"

// Config holds everything the binaries need at startup.
type Config struct {
	// APIKey authenticates against the completion endpoint. Required.
	APIKey string
	// Model is the remote model identifier.
	Model string
	// BaseURL overrides the completion endpoint. Empty means the provider
	// default.
	BaseURL string
	// Addr is the HTTP listen address.
	Addr string
	// DBPath locates the SQLite database file.
	DBPath string
	// MaxIterations bounds the tool-calling rounds per turn. Zero means the
	// agent default.
	MaxIterations int
}

// Load reads configuration from the environment. A missing API key is the
// only fatal condition.
func Load() (*Config, error) {
	apiKey := os.Getenv("PERPLEXITY_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("PERPLEXITY_API_KEY environment variable not set")
	}

	cfg := &Config{
		APIKey:  apiKey,
		Model:   envOr("TYSON_MODEL", DefaultModel),
		BaseURL: os.Getenv("TYSON_BASE_URL"),
		Addr:    ":" + envOr("PORT", "8000"),
		DBPath:  envOr("TYSON_DB_PATH", "data/tyson.db"),
	}

	if v := os.Getenv("TYSON_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid TYSON_MAX_ITERATIONS: %q", v)
		}
		cfg.MaxIterations = n
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

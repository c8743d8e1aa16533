// Package config provides environment-based configuration for the job
// tracker. A .env file is loaded by the CLI entrypoint before Load runs.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server and CLI need to run.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// GeminiAPIKey authenticates extraction and query-synthesis calls.
	GeminiAPIKey string

	// SearchAPIKey and SearchEngineID configure the Custom Search API.
	// Both empty means search enrichment is disabled.
	SearchAPIKey   string
	SearchEngineID string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:           envInt("PORT", 8080),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		SearchAPIKey:   os.Getenv("SEARCH_API_KEY"),
		SearchEngineID: os.Getenv("SEARCH_ENGINE_ID"),
	}
}

// Validate checks that required values are present. Search credentials are
// optional; the pipeline degrades to tracking without enrichment.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if (c.SearchAPIKey == "") != (c.SearchEngineID == "") {
		return fmt.Errorf("SEARCH_API_KEY and SEARCH_ENGINE_ID must be set together")
	}
	return nil
}

// SearchEnabled reports whether search enrichment credentials are present.
func (c *Config) SearchEnabled() bool {
	return c.SearchAPIKey != "" && c.SearchEngineID != ""
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the rate limit for one endpoint.
type EndpointConfig struct {
	Path   string        // endpoint path, prefix match when it ends with "/"
	Method string        // HTTP method
	Limit  int           // maximum requests per window
	Window time.Duration
	Burst  int // burst capacity, defaults to Limit when 0
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. Endpoints that
// trigger LLM calls, web searches or page fetches are the strict tier;
// writes are moderate; reads fall through to the default limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: LLM and network-heavy operations
		{Path: "/api/addJob", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/api/captureJob", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/api/processSearchQueries", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/api/getUrlTitles", Method: "POST", Limit: 30, Window: time.Hour, Burst: 3},

		// Tier 2: write operations
		{Path: "/api/bulkUpdate", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/jobs/", Method: "PATCH", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: reads use the default limit
		// Tier 4: health check is unlimited, special-cased in the matcher
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}

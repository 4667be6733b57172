package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// envPrefix prefixes every rate limit environment variable
const envPrefix = "BRANDVOICE_RATE_LIMIT_"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig builds rate limiting configuration from environment lookups.
// A nil getenv yields the defaults.
func LoadConfig(getenv func(string) string) *Config {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	env := envReader(getenv)

	if !env.bool("ENABLED", true) {
		return &Config{Enabled: false}
	}

	endpoints := DefaultEndpointConfigs()
	for i := range endpoints {
		name := strings.ToUpper(strings.ReplaceAll(strings.Trim(endpoints[i].Path, "/"), "/", "_"))
		endpoints[i].Limit = env.int(name+"_LIMIT", endpoints[i].Limit)
		endpoints[i].Burst = env.int(name+"_BURST", endpoints[i].Burst)
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.int("DEFAULT_LIMIT", 600),
		DefaultWindow:   env.duration("DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(env.string("WHITELIST", "")),
		Blacklist:       parseIPList(env.string("BLACKLIST", "")),
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model calls (strictest limits)
		{Path: "/analyze", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/analyze/stream", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/generate", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// Local extraction only
		{Path: "/extract", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},

		// Health check (unlimited) is handled by a special case in the matcher
	}
}

// envReader reads prefixed variables with typed defaults
type envReader func(string) string

func (e envReader) string(key, defaultValue string) string {
	if value := e(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) int(key string, defaultValue int) int {
	if value := e(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) bool(key string, defaultValue bool) bool {
	if value := e(envPrefix + key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e envReader) duration(key string, defaultValue time.Duration) time.Duration {
	if value := e(envPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Path pattern: exact, "*" for one segment, or a "/"-terminated prefix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    300,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: headless browser work
		{Path: "/cvs/*/export.pdf", Method: http.MethodGet, Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/cvs/*/preview.jpg", Method: http.MethodGet, Limit: 60, Window: time.Hour, Burst: 10},

		// Tier 2: writes
		{Path: "/cvs", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/cvs/*", Method: http.MethodDelete, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/cvs/*/sections/*", Method: http.MethodPut, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/skills", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/skills/*", Method: http.MethodPut, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/skills/*", Method: http.MethodDelete, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/companies", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/companies/*", Method: http.MethodPut, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/companies/*", Method: http.MethodDelete, Limit: 60, Window: time.Minute, Burst: 10},

		// Tier 3: reads use the default limit
		// Tier 4: health check is unlimited, see MatchEndpoint
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}

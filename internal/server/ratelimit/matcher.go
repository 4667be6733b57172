package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for exempt requests
var unlimited = EndpointConfig{}

// exempt lists method and path pairs that never consume tokens
var exempt = map[string]bool{
	http.MethodGet + " /health": true,
}

// MatchEndpoint returns the configuration governing method and path, or nil
// when none applies and the default limit should be used.
// Preflight requests and exempt routes get an unlimited config. An exact path
// wins over a prefix entry (a Path ending in "/"); among prefixes the longest wins.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodOptions || exempt[method+" "+path] {
		return &unlimited
	}

	if trimmed := strings.TrimSuffix(path, "/"); trimmed != "" {
		path = trimmed
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}

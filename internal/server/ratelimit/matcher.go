package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig is the budget for one route. A Path ending in "/" covers every path under it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int // zero means Limit
}

// unlimited is returned for routes that are never throttled.
var unlimited = EndpointConfig{}

func (c *EndpointConfig) isPrefix() bool {
	return strings.HasSuffix(c.Path, "/")
}

// covers reports whether the config applies to the request. exact selects the matching mode.
func (c *EndpointConfig) covers(path, method string, exact bool) bool {
	if c.Method != method {
		return false
	}
	if exact {
		return c.Path == path
	}
	return c.isPrefix() && strings.HasPrefix(path, c.Path)
}

// MatchEndpoint picks the config for a request: GET /health is unlimited, then an exact
// path wins over a prefix. It returns nil when nothing applies.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == http.MethodGet {
		u := unlimited
		return &u
	}
	for _, exact := range []bool{true, false} {
		for i := range configs {
			if configs[i].covers(path, method, exact) {
				return &configs[i]
			}
		}
	}
	return nil
}

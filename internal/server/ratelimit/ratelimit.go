// Package ratelimit provides per-client request limiting for the HTTP API.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a client's limiter is kept after its last request.
const idleTTL = time.Hour

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	EndpointConfigs []EndpointConfig
}

// DefaultConfig limits verification endpoints to verifyPerHour requests per client.
func DefaultConfig(verifyPerHour int) Config {
	return Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(verifyPerHour),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Every verification
// fans out to fetches, searches and model calls, so those share the strict tier.
func DefaultEndpointConfigs(verifyPerHour int) []EndpointConfig {
	burst := max(1, verifyPerHour/10)
	return []EndpointConfig{
		{Path: "/v1/verify", Method: "POST", Limit: verifyPerHour, Window: time.Hour, Burst: burst},
		{Path: "/v1/verify/stream", Method: "POST", Limit: verifyPerHour, Window: time.Hour, Burst: burst},
		{Path: "/v1/analyze", Method: "POST", Limit: verifyPerHour, Window: time.Hour, Burst: burst},
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client, endpoint and method.
type Limiter struct {
	config    Config
	now       func() time.Time
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config Config) *Limiter {
	return &Limiter{
		config:  config,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Unlimited endpoint (health check)
	if endpointConfig.Limit <= 0 || endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	lim := l.limiterFor(clientID+":"+endpoint+":"+method, endpointConfig, now)

	info := Info{Limit: endpointConfig.Limit}
	res := lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); !res.OK() || delay > 0 {
		res.CancelAt(now)
		info.RetryAfter = delay
		info.ResetTime = now.Add(delay)
		return false, info
	}

	info.Allowed = true
	tokens := lim.TokensAt(now)
	info.Remaining = int(math.Max(0, math.Floor(tokens)))
	missing := float64(lim.Burst()) - tokens
	info.ResetTime = now.Add(time.Duration(missing / float64(lim.Limit()) * float64(time.Second)))
	return true, info
}

// limiterFor gets or creates the bucket for key and drops buckets idle for over idleTTL.
func (l *Limiter) limiterFor(key string, cfg *EndpointConfig, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > idleTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.Limit
		}
		every := cfg.Window / time.Duration(cfg.Limit)
		c = &client{limiter: rate.NewLimiter(rate.Every(every), burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Len reports how many client buckets are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

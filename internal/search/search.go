// Package search provides web search backends used for company open-source checks.
package search

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/config"
	"github.com/jonathan/job-verifier/internal/types"
)

// Result is a single search hit.
type Result = types.SearchHit

// WebSearch runs a query and returns at most maxResults hits.
// Backend failures are logged and yield an empty slice.
type WebSearch interface {
	Search(ctx context.Context, query string, maxResults int) []Result
}

// Func adapts a plain function to WebSearch.
type Func func(ctx context.Context, query string, maxResults int) []Result

// Search implements WebSearch
func (f Func) Search(ctx context.Context, query string, maxResults int) []Result {
	return f(ctx, query, maxResults)
}

// None never returns results.
var None WebSearch = Func(func(context.Context, string, int) []Result { return nil })

// Chain queries each backend in order and returns the first non-empty answer.
type Chain []WebSearch

// Search implements WebSearch
func (c Chain) Search(ctx context.Context, query string, maxResults int) []Result {
	for _, backend := range c {
		if ctx.Err() != nil {
			return nil
		}
		if results := backend.Search(ctx, query, maxResults); len(results) > 0 {
			return results
		}
	}
	return nil
}

// NewFromConfig builds the configured backends: Google Custom Search when a key and cx are present,
// then DuckDuckGo when enabled, all behind a shared rate limit.
func NewFromConfig(ctx context.Context, cfg config.SearchConfig) WebSearch {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var chain Chain
	if cfg.GoogleAPIKey != "" && cfg.GoogleCX != "" {
		g, err := NewGoogle(ctx, cfg.GoogleAPIKey, cfg.GoogleCX)
		if err != nil {
			zap.L().Warn("search: google custom search unavailable", zap.Error(err))
		} else {
			chain = append(chain, g)
		}
	}
	if cfg.DuckDuckGo {
		chain = append(chain, NewDuckDuckGo(&http.Client{Timeout: timeout}))
	}

	if len(chain) == 0 {
		zap.L().Info("search: no backends configured, open-source checks will find nothing")
		return None
	}
	return NewThrottled(chain, cfg.RatePerSecond)
}

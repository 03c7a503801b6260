package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Throttled limits how often the wrapped backend is queried.
type Throttled struct {
	next    WebSearch
	limiter *rate.Limiter
}

// NewThrottled wraps next with a limiter of perSecond queries (burst 1).
// A non-positive rate disables throttling.
func NewThrottled(next WebSearch, perSecond float64) *Throttled {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, 1)}
}

// Search implements WebSearch
func (t *Throttled) Search(ctx context.Context, query string, maxResults int) []Result {
	if err := t.limiter.Wait(ctx); err != nil {
		zap.L().Debug("search: throttle wait aborted", zap.String("query", query), zap.Error(err))
		return nil
	}
	return t.next.Search(ctx, query, maxResults)
}

package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// Google queries the Programmable Search Engine (Custom Search JSON API).
type Google struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogle creates a Custom Search client. Extra options are passed to the service, for tests.
func NewGoogle(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*Google, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create customsearch service")
	}
	return &Google{svc: svc, cx: cx}, nil
}

// Search implements WebSearch
func (g *Google) Search(ctx context.Context, query string, maxResults int) []Result {
	// The API serves at most 10 results per page
	num := int64(maxResults)
	if num < 1 || num > 10 {
		num = 10
	}

	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		zap.L().Debug("search: google query failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(item.Title),
			URL:     link,
			Snippet: strings.TrimSpace(item.Snippet),
		})
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
	}
	return results
}

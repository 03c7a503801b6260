// Package pipelinetest provides in-memory fakes of the pipeline's external collaborators.
package pipelinetest

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/jonathan/job-verifier/internal/fetch"
	"github.com/jonathan/job-verifier/internal/search"
)

// Fetcher is a fetch.PageFetcher serving canned HTML by URL.
type Fetcher struct {
	// Pages answers Fetch. A missing URL fails like an HTTP 404.
	Pages map[string]string
	// RenderedA and RenderedB answer the two render engines.
	RenderedA map[string]string
	RenderedB map[string]string
	// Err, when set, fails every Fetch.
	Err  error
	Caps fetch.Capabilities

	mu      sync.Mutex
	fetched []string
	renders []string
}

var _ fetch.PageFetcher = (*Fetcher)(nil)

// Fetch implements fetch.PageFetcher
func (f *Fetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	html, ok := f.Pages[url]
	if !ok {
		return "", &fetch.Error{URL: url, Message: "HTTP status 404", Cause: errors.New("not found")}
	}
	return html, nil
}

// RenderA implements fetch.PageFetcher
func (f *Fetcher) RenderA(_ context.Context, url string) (string, bool) {
	return f.render("A", f.RenderedA, url)
}

// RenderB implements fetch.PageFetcher
func (f *Fetcher) RenderB(_ context.Context, url string) (string, bool) {
	return f.render("B", f.RenderedB, url)
}

func (f *Fetcher) render(engine string, pages map[string]string, url string) (string, bool) {
	f.mu.Lock()
	f.renders = append(f.renders, engine)
	f.mu.Unlock()

	if !f.Caps.BrowserEnabled {
		return "", false
	}
	html, ok := pages[url]
	return html, ok && html != ""
}

// Capabilities implements fetch.PageFetcher
func (f *Fetcher) Capabilities() fetch.Capabilities {
	return f.Caps
}

// Fetched returns the URLs passed to Fetch.
func (f *Fetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// Renders returns the engines invoked, "A" or "B", in call order.
func (f *Fetcher) Renders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.renders...)
}

// Search is a search.WebSearch answering from canned results.
type Search struct {
	// Results maps a substring of the query to the hits returned for it.
	// The first matching key in lexical order wins.
	Results map[string][]search.Result

	mu      sync.Mutex
	queries []string
}

var _ search.WebSearch = (*Search)(nil)

// Search implements search.WebSearch
func (s *Search) Search(_ context.Context, query string, maxResults int) []search.Result {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	for _, key := range sortedKeys(s.Results) {
		if strings.Contains(query, key) {
			hits := s.Results[key]
			if maxResults > 0 && len(hits) > maxResults {
				hits = hits[:maxResults]
			}
			return append([]search.Result(nil), hits...)
		}
	}
	return nil
}

// Queries returns every query received, in call order.
func (s *Search) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func sortedKeys(m map[string][]search.Result) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ErrOffline is returned by every request made through OfflineClient.
var ErrOffline = errors.New("pipelinetest: network access disabled")

// OfflineClient returns an HTTP client whose requests all fail with ErrOffline.
func OfflineClient() *http.Client {
	return &http.Client{Transport: offlineTransport{}}
}

type offlineTransport struct{}

func (offlineTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, ErrOffline
}

package search

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/fetch"
)

// DuckDuckGoEndpoint is the JavaScript-free results page.
const DuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML results page. It needs no credentials.
type DuckDuckGo struct {
	Endpoint string
	client   *http.Client
}

// NewDuckDuckGo creates a scraper using client.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGo{Endpoint: DuckDuckGoEndpoint, client: client}
}

// Search implements WebSearch
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) []Result {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		zap.L().Debug("search: duckduckgo request failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		zap.L().Debug("search: duckduckgo status", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil
	}
	return parseDuckDuckGo(doc, maxResults)
}

func parseDuckDuckGo(doc *goquery.Document, maxResults int) []Result {
	var results []Result
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		if link.Length() == 0 {
			return true
		}
		href, _ := link.Attr("href")
		if strings.Contains(href, "duckduckgo.com/y.js") {
			return true
		}
		resolved := ResolveRedirect(href)
		if resolved == "" || strings.Contains(resolved, "duckduckgo.com") {
			return true
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(link.Text()),
			URL:     resolved,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return maxResults <= 0 || len(results) < maxResults
	})
	return results
}

// ResolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func ResolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	if strings.Contains(href, "duckduckgo.com/l/?") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
	}
	if unescaped, err := url.QueryUnescape(href); err == nil {
		return unescaped
	}
	return href
}

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/jonathan/job-verifier/internal/config"
)

const ddgPage = `
<html><body>
  <div class="result results_links result--ad">
    <a class="result__a" href="https://duckduckgo.com/y.js?ad_provider=x">Sponsored</a>
  </div>
  <div class="result results_links">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.com%2Fabout&amp;rut=abc">Acme Corp | About</a>
    <a class="result__snippet">Acme builds anvils since 1920.</a>
  </div>
  <div class="result results_links">
    <a class="result__a" href="https://www.glassdoor.com/Reviews/Acme-Reviews.htm">Acme Reviews</a>
    <div class="result__snippet">Employees rate Acme 4.1 stars.</div>
  </div>
  <div class="result results_links">
    <a class="result__a" href="https://news.example.org/acme">Acme press release</a>
  </div>
</body></html>`

func TestParseDuckDuckGo(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ddgPage))
	require.NoError(t, err)

	results := parseDuckDuckGo(doc, 5)
	require.Len(t, results, 3)

	assert.Equal(t, "Acme Corp | About", results[0].Title)
	assert.Equal(t, "https://acme.com/about", results[0].URL)
	assert.Equal(t, "Acme builds anvils since 1920.", results[0].Snippet)
	assert.Equal(t, "https://www.glassdoor.com/Reviews/Acme-Reviews.htm", results[1].URL)
	assert.Empty(t, results[2].Snippet)
}

func TestParseDuckDuckGo_MaxResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ddgPage))
	require.NoError(t, err)

	assert.Len(t, parseDuckDuckGo(doc, 1), 1)
}

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.com%2Fcareers&rut=1", "https://acme.com/careers"},
		{"https://acme.com/jobs", "https://acme.com/jobs"},
		{"https%3A%2F%2Facme.com", "https://acme.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRedirect(tt.in))
		})
	}
}

func TestDuckDuckGo_Search(t *testing.T) {
	var gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("q")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer server.Close()

	d := NewDuckDuckGo(server.Client())
	d.Endpoint = server.URL

	results := d.Search(context.Background(), "Acme company overview", 2)
	assert.Equal(t, "Acme company overview", gotQuery)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Len(t, results, 2)
}

func TestDuckDuckGo_ServerErrorYieldsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	d := NewDuckDuckGo(server.Client())
	d.Endpoint = server.URL

	assert.Empty(t, d.Search(context.Background(), "anything", 5))
}

func TestGoogle_Search(t *testing.T) {
	var gotQuery, gotNum string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotNum = r.URL.Query().Get("num")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [
			{"title": "Acme - Official Site", "link": "https://acme.com/", "snippet": "Welcome to Acme"},
			{"title": "no link"},
			{"title": "Acme on Wikipedia", "link": "https://en.wikipedia.org/wiki/Acme", "snippet": "Acme is..."}
		]}`))
	}))
	defer server.Close()

	g, err := NewGoogle(context.Background(), "key", "cx-id",
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	results := g.Search(context.Background(), "Acme official site", 5)
	assert.Equal(t, "Acme official site", gotQuery)
	assert.Equal(t, "5", gotNum)
	require.Len(t, results, 2)
	assert.Equal(t, "https://acme.com/", results[0].URL)
	assert.Equal(t, "Welcome to Acme", results[0].Snippet)
}

func TestChain_FirstNonEmptyWins(t *testing.T) {
	var order []string
	empty := Func(func(context.Context, string, int) []Result {
		order = append(order, "empty")
		return nil
	})
	full := Func(func(context.Context, string, int) []Result {
		order = append(order, "full")
		return []Result{{Title: "hit", URL: "https://acme.com"}}
	})
	never := Func(func(context.Context, string, int) []Result {
		order = append(order, "never")
		return nil
	})

	results := Chain{empty, full, never}.Search(context.Background(), "q", 3)
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"empty", "full"}, order)
}

func TestThrottled_CancelledContext(t *testing.T) {
	calls := 0
	backend := Func(func(context.Context, string, int) []Result {
		calls++
		return []Result{{URL: "https://acme.com"}}
	})
	th := NewThrottled(backend, 0.001)

	// The first token is available immediately
	assert.Len(t, th.Search(context.Background(), "q", 1), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Empty(t, th.Search(ctx, "q", 1))
	assert.Equal(t, 1, calls)
}

func TestNewFromConfig_NoBackends(t *testing.T) {
	ws := NewFromConfig(context.Background(), config.SearchConfig{})
	assert.Empty(t, ws.Search(context.Background(), "Acme", 5))
}

func TestNewFromConfig_DuckDuckGoOnly(t *testing.T) {
	ws := NewFromConfig(context.Background(), config.SearchConfig{DuckDuckGo: true, RatePerSecond: 2})
	th, ok := ws.(*Throttled)
	require.True(t, ok)
	chain, ok := th.next.(Chain)
	require.True(t, ok)
	require.Len(t, chain, 1)
	assert.IsType(t, &DuckDuckGo{}, chain[0])
}

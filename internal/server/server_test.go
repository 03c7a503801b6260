package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-verifier/internal/config"
	"github.com/jonathan/job-verifier/internal/llm/llmtest"
	"github.com/jonathan/job-verifier/internal/pipeline"
	"github.com/jonathan/job-verifier/internal/pipeline/pipelinetest"
	"github.com/jonathan/job-verifier/internal/research"
	"github.com/jonathan/job-verifier/internal/types"
)

// stubVerifier answers with a canned result and records its inputs.
type stubVerifier struct {
	mu       sync.Mutex
	urls     []string
	postings []*types.Posting
	err      error
}

func (v *stubVerifier) ProcessJob(ctx context.Context, rawURL string) (*types.Result, error) {
	v.mu.Lock()
	v.urls = append(v.urls, rawURL)
	v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	return v.result(ctx, rawURL), nil
}

func (v *stubVerifier) ProcessPosting(ctx context.Context, p *types.Posting) (*types.Result, error) {
	v.mu.Lock()
	v.postings = append(v.postings, p)
	v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	res := v.result(ctx, p.URL)
	res.Source.Title = p.Title
	return res, nil
}

func (v *stubVerifier) result(_ context.Context, u string) *types.Result {
	flags := types.NewFlags()
	flags.Add(types.CategoryContent, "Urgency language detected")
	return &types.Result{
		Verdict:    types.VerdictSuspicious,
		RiskScore:  55,
		Confidence: 45,
		Flags:      flags,
		Source:     types.Source{URL: u},
	}
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{Addr: ":0", WriteTimeout: time.Minute}
}

func newTestServer(t *testing.T, v Verifier, cfg config.ServerConfig) http.Handler {
	t.Helper()
	s, err := New(v, cfg)
	require.NoError(t, err)
	return s.Router()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, &stubVerifier{}, testConfig())

	w := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestVerifyEndpoint(t *testing.T) {
	v := &stubVerifier{}
	h := newTestServer(t, v, testConfig())

	w := do(h, http.MethodPost, "/v1/verify", `{"url": "https://jobs.example.com/42"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res types.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, types.VerdictSuspicious, res.Verdict)
	assert.Equal(t, 55, res.RiskScore)
	assert.Equal(t, []string{"Urgency language detected"}, res.Flags.Get(types.CategoryContent))
	assert.Equal(t, []string{"https://jobs.example.com/42"}, v.urls)
}

func TestVerifyEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{"url":`, "Invalid request body"},
		{"missing url", `{}`, "URL - required"},
		{"not a url", `{"url": "jobs at acme"}`, "URL - http_url"},
		{"ftp url", `{"url": "ftp://acme.com/jobs"}`, "URL - http_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubVerifier{}
			h := newTestServer(t, v, testConfig())

			w := do(h, http.MethodPost, "/v1/verify", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantErr)
			assert.Empty(t, v.urls)
		})
	}
}

func TestVerifyEndpoint_InvalidURLFromPipeline(t *testing.T) {
	v := &stubVerifier{err: fmt.Errorf("%w: %q", pipeline.ErrInvalidURL, "http://")}
	h := newTestServer(t, v, testConfig())

	w := do(h, http.MethodPost, "/v1/verify", `{"url": "https://acme.com/jobs/1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid job posting URL")
}

func TestVerifyEndpoint_InternalError(t *testing.T) {
	v := &stubVerifier{err: errors.New("boom")}
	h := newTestServer(t, v, testConfig())

	w := do(h, http.MethodPost, "/v1/verify", `{"url": "https://acme.com/jobs/1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	v := &stubVerifier{}
	h := newTestServer(t, v, testConfig())

	body := `{
		"url": "https://acme.com/careers/7",
		"title": "Data Entry Clerk",
		"company": "Acme",
		"description": "Process invoices from home.",
		"contact_emails": ["hr@acme.com"],
		"salary_mentions": ["$40,000"]
	}`
	w := do(h, http.MethodPost, "/v1/analyze", body)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, v.postings, 1)
	assert.Equal(t, "Data Entry Clerk", v.postings[0].Title)
	assert.Equal(t, []string{"hr@acme.com"}, v.postings[0].ContactEmails)

	var res types.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Data Entry Clerk", res.Source.Title)
}

func TestAnalyzeEndpoint_Validation(t *testing.T) {
	v := &stubVerifier{}
	h := newTestServer(t, v, testConfig())

	w := do(h, http.MethodPost, "/v1/analyze", `{"url": "https://acme.com/1", "title": "Clerk"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Description - required")

	w = do(h, http.MethodPost, "/v1/analyze",
		`{"url": "https://acme.com/1", "title": "Clerk", "description": "x", "contact_emails": ["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, v.postings)
}

func TestVerifyStreamEndpoint(t *testing.T) {
	const postingURL = "https://www.amazon.jobs/en/jobs/2514210/software-dev-engineer"
	description := strings.Repeat("You will design, build and operate large distributed systems "+
		"with a team of experienced engineers, write design documents and review code. ", 5)
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		postingURL: `<html><body><h1>Software Development Engineer</h1>` +
			`<span class="company-name">Amazon</span>` +
			`<div class="job-description">` + description + `</div></body></html>`,
	}}
	runner, err := pipeline.New(pipeline.Dependencies{
		Fetcher:  f,
		Search:   &pipelinetest.Search{},
		LLM:      llmtest.Down(),
		Research: research.Options{Client: pipelinetest.OfflineClient()},
	})
	require.NoError(t, err)
	h := newTestServer(t, runner, testConfig())

	w := do(h, http.MethodPost, "/v1/verify/stream", `{"url": "`+postingURL+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := parseSSE(t, w.Body.Bytes())
	require.NotEmpty(t, events)
	assert.Equal(t, "step", events[0].name)
	assert.Contains(t, events[0].data, "data_acquisition")

	last := events[len(events)-1]
	require.Equal(t, "result", last.name)
	var res types.Result
	require.NoError(t, json.Unmarshal([]byte(last.data), &res))
	assert.Equal(t, types.VerdictLegit, res.Verdict)

	steps := 0
	for _, e := range events {
		if e.name == "step" {
			steps++
		}
	}
	// started + completed for each of the six stages
	assert.Equal(t, 12, steps)
}

func TestVerifyStreamEndpoint_Error(t *testing.T) {
	v := &stubVerifier{err: errors.New("boom")}
	h := newTestServer(t, v, testConfig())

	w := do(h, http.MethodPost, "/v1/verify/stream", `{"url": "https://acme.com/jobs/1"}`)
	events := parseSSE(t, w.Body.Bytes())
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].name)
	assert.Contains(t, events[0].data, "boom")
}

func TestRateLimitedRouter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = true
	cfg.VerifyPerHour = 5
	h := newTestServer(t, &stubVerifier{}, cfg)

	w := do(h, http.MethodPost, "/v1/verify", `{"url": "https://acme.com/jobs/1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))

	w = do(h, http.MethodPost, "/v1/verify", `{"url": "https://acme.com/jobs/1"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.NotZero(t, resp["retry_after"])

	w = do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.CORSOrigins = []string{"https://dashboard.example.com"}
	h := newTestServer(t, &stubVerifier{}, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/v1/verify", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNew_RequiresVerifier(t *testing.T) {
	_, err := New(nil, testConfig())
	assert.Error(t, err)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(pipeline.ErrInvalidURL))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrValidation{Field: "url", Message: "required"}))
	assert.Equal(t, statusClientClosedRequest, HTTPStatus(fmt.Errorf("run: %w", context.Canceled)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body []byte) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "" && cur.name != "":
			events = append(events, cur)
			cur = sseEvent{}
		}
	}
	require.NoError(t, sc.Err())
	return events
}

package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/llm/llmtest"
	"github.com/jonathan/job-verifier/internal/pipeline/pipelinetest"
	"github.com/jonathan/job-verifier/internal/research"
	"github.com/jonathan/job-verifier/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	trustedURL   = "https://www.amazon.jobs/en/jobs/2514210/software-dev-engineer"
	untrustedURL = "https://quick-cash-careers.com/jobs/77"
	paywalledURL = "https://www.linkedin.com/jobs/view/3791234567"
)

var longDescription = strings.Repeat("You will design, build and operate large distributed systems "+
	"with a team of experienced engineers, write design documents and review code. ", 5)

func page(title, company, description string) string {
	return `<html><head><title>` + title + `</title></head><body><h1>` + title + `</h1>` +
		`<span class="company-name">` + company + `</span>` +
		`<div class="job-description">` + description + `</div></body></html>`
}

// progressLog collects progress events.
type progressLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (p *progressLog) record(e ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *progressLog) steps() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.Message == "started" {
			out = append(out, e.Step)
		}
	}
	return out
}

func newTestRunner(t *testing.T, f *pipelinetest.Fetcher, gw llm.Gateway) (*Runner, *progressLog) {
	t.Helper()
	log := &progressLog{}
	r, err := New(Dependencies{
		Fetcher:  f,
		Search:   &pipelinetest.Search{},
		LLM:      gw,
		Research: research.Options{Client: pipelinetest.OfflineClient()},
	}, WithProgress(log.record))
	require.NoError(t, err)
	return r, log
}

func TestProcessJob_TrustedCompletePostingIsLegit(t *testing.T) {
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		trustedURL: page("Software Development Engineer", "Amazon", longDescription),
	}}
	r, log := newTestRunner(t, f, llmtest.Down())

	res, err := r.ProcessJob(context.Background(), trustedURL)
	require.NoError(t, err)

	assert.Equal(t, types.VerdictLegit, res.Verdict)
	assert.Empty(t, res.Flags.Get(types.CategoryAcquisition))
	assert.Zero(t, res.Flags.Total())
	assert.Equal(t, 0, res.RiskScore)
	assert.Equal(t, 100, res.Confidence)
	assert.Empty(t, res.Reason)
	assert.Equal(t, "Amazon", res.Source.Company)
	assert.Equal(t, "Software Development Engineer", res.Source.Title)
	assert.Contains(t, res.Recommendation, "No major red flags")
	assert.NotEqual(t, uuid.Nil, res.ID)

	require.NotNil(t, res.Meta)
	assert.True(t, res.Meta.TrustedDomain)
	assert.True(t, res.Meta.NoEmailExpected)
	assert.True(t, res.Meta.NoSalaryExpected)
	require.NotNil(t, res.Meta.CompanyIntel)
	assert.Equal(t, "amazon.jobs", res.Meta.CompanyIntel.CompanyDomain)

	assert.Equal(t, []string{
		"data_acquisition",
		"content_analysis",
		"information_extraction",
		"source_verification",
		"financial_risk",
		"risk_synthesis",
	}, log.steps())
}

func TestProcessJob_PaymentDemandsAreFake(t *testing.T) {
	desc := longDescription + " To start you must send bitcoin for your equipment, or wire money upfront to our agent."
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		untrustedURL: page("Remote Assistant", "Quick Cash Careers", desc),
	}}
	r, _ := newTestRunner(t, f, llmtest.Down())

	res, err := r.ProcessJob(context.Background(), untrustedURL)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Flags.Count(types.CategoryFinancial), 2)
	assert.Contains(t, res.Flags.Get(types.CategoryFinancial), "Critical financial scam: send bitcoin")
	assert.Contains(t, res.Flags.Get(types.CategoryFinancial), "Critical financial scam: wire money upfront")
	assert.Equal(t, types.VerdictFake, res.Verdict)
	assert.Contains(t, res.Recommendation, "HIGH RISK")
	assert.Equal(t, 100-res.RiskScore, res.Confidence)
}

func TestProcessJob_TrustedShortDescriptionIsIncomplete(t *testing.T) {
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		trustedURL: page("Software Development Engineer", "Amazon", "Loading job details, please wait......"),
	}}
	r, _ := newTestRunner(t, f, llmtest.Down())

	res, err := r.ProcessJob(context.Background(), trustedURL)
	require.NoError(t, err)

	assert.True(t, res.Meta.ScrapingIncomplete)
	assert.Equal(t, types.VerdictIncompleteData, res.Verdict)
	assert.Equal(t, []string{
		"Unable to extract full description - enable a headless browser engine for JS rendering support.",
	}, res.Flags.Get(types.CategoryAcquisition))
	assert.Equal(t, res.Flags.Count(types.CategoryAcquisition), res.Flags.Total())
	assert.Contains(t, res.Recommendation, "JavaScript rendering")
}

func TestProcessJob_PaywallStopsThePipeline(t *testing.T) {
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		paywalledURL: page("Sign in to LinkedIn", "LinkedIn", "Sign in to view this job. Join now to see who is hiring."),
	}}
	gw := &llmtest.Gateway{Up: true}
	r, log := newTestRunner(t, f, gw)

	res, err := r.ProcessJob(context.Background(), paywalledURL)
	require.NoError(t, err)

	assert.Equal(t, types.VerdictError, res.Verdict)
	assert.Contains(t, res.Reason, "login required")
	assert.True(t, strings.HasSuffix(res.Reason, "Original URL: "+paywalledURL))
	assert.Equal(t, []string{"Page requires login or authentication"}, res.Flags.Get(types.CategoryAcquisition))
	assert.Equal(t, []string{"data_acquisition"}, log.steps())
	assert.Empty(t, gw.Calls())
}

func TestProcessJob_FetchFailure(t *testing.T) {
	r, _ := newTestRunner(t, &pipelinetest.Fetcher{}, llmtest.Down())

	res, err := r.ProcessJob(context.Background(), untrustedURL)
	require.NoError(t, err)

	assert.Equal(t, types.VerdictError, res.Verdict)
	assert.True(t, strings.HasPrefix(res.Reason, "Failed to fetch URL: "))
	assert.Contains(t, res.Reason, "HTTP status 404")
}

func TestProcessJob_ReportsCanonicalURL(t *testing.T) {
	tracking := "https://www.linkedin.com/jobs/search/?currentJobId=3791234567&trk=abc"
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		paywalledURL: page("Data Analyst", "Acme", longDescription),
	}}
	r, _ := newTestRunner(t, f, llmtest.Down())

	res, err := r.ProcessJob(context.Background(), tracking)
	require.NoError(t, err)

	assert.Equal(t, paywalledURL, res.Source.URL)
	require.NotNil(t, res.Meta.StructuredProfile)
	assert.Equal(t, paywalledURL, res.Meta.StructuredProfile.URL)
}

func TestProcessJob_InvalidURL(t *testing.T) {
	f := &pipelinetest.Fetcher{}
	r, log := newTestRunner(t, f, llmtest.Down())

	for _, u := range []string{"", "   ", "not a url", "ftp://example.com/job", "https://"} {
		res, err := r.ProcessJob(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q", u)
		assert.Nil(t, res)
	}
	assert.Empty(t, f.Fetched())
	assert.Empty(t, log.steps())
}

func TestProcessJob_CancelledContext(t *testing.T) {
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		trustedURL: page("Software Development Engineer", "Amazon", longDescription),
	}}
	r, _ := newTestRunner(t, f, llmtest.Down())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.ProcessJob(ctx, trustedURL)
	require.NoError(t, err)
	assert.Equal(t, types.VerdictError, res.Verdict)
	assert.Equal(t, context.Canceled.Error(), res.Reason)
	assert.Empty(t, f.Fetched())
}

func TestProcessJob_LLMOverridesVerdict(t *testing.T) {
	desc := longDescription + " To start you must send bitcoin for your equipment."
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		untrustedURL: page("Remote Assistant", "Quick Cash Careers", desc),
	}}
	gw := &llmtest.Gateway{
		Up: true,
		ChatFunc: func(req llm.ChatRequest) (string, bool) {
			if strings.Contains(req.SystemPrompt, "senior fraud analyst") {
				return "legit", true
			}
			return "", false
		},
	}
	r, _ := newTestRunner(t, f, gw)

	res, err := r.ProcessJob(context.Background(), untrustedURL)
	require.NoError(t, err)

	require.NotNil(t, res.Meta.Insights.RiskSynthesis)
	assert.Contains(t, []types.Verdict{types.VerdictFake, types.VerdictSuspicious}, res.Meta.Insights.RiskSynthesis.HeuristicVerdict)
	assert.Equal(t, types.VerdictLegit, res.Meta.Insights.RiskSynthesis.LLMVerdict)
	assert.Equal(t, types.VerdictLegit, res.Verdict)
	assert.Contains(t, res.Recommendation, "No major red flags")
}

func TestProcessPosting(t *testing.T) {
	f := &pipelinetest.Fetcher{}
	r, log := newTestRunner(t, f, llmtest.Down())

	res, err := r.ProcessPosting(context.Background(), &types.Posting{
		URL:         "https://www.amazon.jobs/en/jobs/1",
		Title:       "Software Development Engineer",
		Company:     "Amazon",
		Description: longDescription,
	})
	require.NoError(t, err)

	assert.Empty(t, f.Fetched())
	assert.NotContains(t, log.steps(), "data_acquisition")
	assert.Equal(t, "provided", res.Meta.ScrapingMethod)
	assert.Equal(t, "Software Development Engineer", res.Source.Title)
	assert.NotEmpty(t, res.Verdict)
}

func TestProcessPosting_Invalid(t *testing.T) {
	r, _ := newTestRunner(t, &pipelinetest.Fetcher{}, llmtest.Down())

	_, err := r.ProcessPosting(context.Background(), &types.Posting{URL: "nope", Title: "x", Description: "y"})
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = r.ProcessPosting(context.Background(), &types.Posting{URL: "https://example.com/job"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidURL)

	_, err = r.ProcessPosting(context.Background(), nil)
	assert.Error(t, err)
}

// stubStage is a named no-op stage.
type stubStage string

func (s stubStage) Name() string                               { return string(s) }
func (s stubStage) Run(context.Context, *types.JobContext) error { return nil }

func TestNewWithStages_RejectsBadOrder(t *testing.T) {
	_, err := NewWithStages(stubStage("data_acquisition"), []Stage{
		stubStage("risk_synthesis"),
		stubStage("content_analysis"),
	})
	assert.ErrorContains(t, err, "invalid stage chain")
}

func TestNew_RequiresFetcher(t *testing.T) {
	_, err := New(Dependencies{})
	assert.Error(t, err)
}

func TestProcessJob_ContextProgress(t *testing.T) {
	f := &pipelinetest.Fetcher{Pages: map[string]string{
		trustedURL: page("Software Development Engineer", "Amazon", longDescription),
	}}
	r, runnerLog := newTestRunner(t, f, llmtest.Down())

	reqLog := &progressLog{}
	ctx := ContextWithProgress(context.Background(), reqLog.record)
	res, err := r.ProcessJob(ctx, trustedURL)
	require.NoError(t, err)

	assert.Len(t, reqLog.steps(), 6)
	assert.Equal(t, runnerLog.steps(), reqLog.steps())

	reqLog.mu.Lock()
	last := reqLog.events[len(reqLog.events)-1]
	reqLog.mu.Unlock()
	assert.Equal(t, "risk_synthesis", last.Step)
	assert.Equal(t, "synthesis", last.Category)
	assert.Equal(t, res.ID.String(), last.RunID)
	assert.Contains(t, last.Message, "Verdict legit")
}

// Package pipeline provides the high-level orchestration for the job verification process.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/content"
	"github.com/jonathan/job-verifier/internal/fetch"
	"github.com/jonathan/job-verifier/internal/financial"
	"github.com/jonathan/job-verifier/internal/ingestion"
	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/parsing"
	"github.com/jonathan/job-verifier/internal/pipeline/steps"
	"github.com/jonathan/job-verifier/internal/research"
	"github.com/jonathan/job-verifier/internal/search"
	"github.com/jonathan/job-verifier/internal/synthesis"
	"github.com/jonathan/job-verifier/internal/types"
)

// ErrInvalidURL is returned before any stage runs when the URL is empty or not http(s).
var ErrInvalidURL = errors.New("invalid job posting URL")

// Stage is one step of the verification chain. Returned errors abort the run;
// a *types.AgentError carries the message reported to the caller.
type Stage interface {
	Name() string
	Run(ctx context.Context, jc *types.JobContext) error
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

type progressKey struct{}

// ContextWithProgress returns a copy of ctx whose runs also report to cb,
// for callers that share one Runner but want per-request progress.
func ContextWithProgress(ctx context.Context, cb ProgressCallback) context.Context {
	return context.WithValue(ctx, progressKey{}, cb)
}

// Dependencies are the external collaborators the stages are built from.
// A nil Search or LLM degrades to no results and an unavailable model.
type Dependencies struct {
	Fetcher  fetch.PageFetcher
	Search   search.WebSearch
	LLM      llm.Gateway
	Research research.Options
}

// Option configures a Runner
type Option func(*Runner)

// WithProgress registers a callback receiving stage start and completion events.
func WithProgress(cb ProgressCallback) Option {
	return func(r *Runner) {
		r.onProgress = cb
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// Runner threads one JobContext through the fixed stage chain per request.
// It holds no per-request state and is safe for concurrent use.
type Runner struct {
	acquire    Stage
	analysis   []Stage
	onProgress ProgressCallback
	now        func() time.Time
}

// New builds the standard chain: acquisition, content, extraction, verification, financial, synthesis.
func New(deps Dependencies, opts ...Option) (*Runner, error) {
	if deps.Fetcher == nil {
		return nil, eris.New("pipeline: a page fetcher is required")
	}
	gw := deps.LLM
	if gw == nil {
		gw = llm.Unavailable()
	}
	ws := deps.Search
	if ws == nil {
		ws = search.None
	}

	return NewWithStages(ingestion.NewAcquirer(deps.Fetcher), []Stage{
		content.NewAnalyzer(gw),
		parsing.NewExtractor(gw),
		research.NewVerifier(research.NewInvestigator(ws, gw, deps.Research)),
		financial.NewAssessor(),
		synthesis.NewSynthesizer(gw),
	}, opts...)
}

// NewWithStages builds a Runner from explicit stages. The chain is checked against the step registry.
func NewWithStages(acquire Stage, analysis []Stage, opts ...Option) (*Runner, error) {
	names := []string{acquire.Name()}
	for _, s := range analysis {
		names = append(names, s.Name())
	}
	if err := steps.ValidateChain(names); err != nil {
		return nil, eris.Wrap(err, "pipeline: invalid stage chain")
	}

	r := &Runner{acquire: acquire, analysis: analysis, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ProcessJob fetches the posting at rawURL and runs the full chain.
// The only error is ErrInvalidURL; stage failures are reported as an error verdict.
func (r *Runner) ProcessJob(ctx context.Context, rawURL string) (*types.Result, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}
	chain := append([]Stage{r.acquire}, r.analysis...)
	return r.run(ctx, types.NewJobContext(u), chain), nil
}

// ProcessPosting runs the chain without acquisition on a posting the caller already scraped.
func (r *Runner) ProcessPosting(ctx context.Context, p *types.Posting) (*types.Result, error) {
	if p == nil {
		return nil, eris.New("pipeline: posting is required")
	}
	if _, err := validateURL(p.URL); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: invalid posting")
	}
	return r.run(ctx, ingestion.FromPosting(p), r.analysis), nil
}

func (r *Runner) run(ctx context.Context, jc *types.JobContext, chain []Stage) *types.Result {
	id := uuid.New()
	start := r.now()
	logger := zap.L().With(zap.String("run_id", id.String()), zap.String("url", jc.URL))

	for _, stage := range chain {
		r.emit(ctx, id, stage.Name(), "started", nil)

		err := ctx.Err()
		if err == nil {
			err = stage.Run(ctx, jc)
		}
		if err != nil {
			logger.Warn("pipeline: stage failed", zap.String("stage", stage.Name()), zap.Error(err))
			r.emit(ctx, id, stage.Name(), "failed: "+err.Error(), nil)
			return r.errorResult(id, jc, err, start)
		}

		r.emit(ctx, id, stage.Name(), stageSummary(stage.Name(), jc), jc.Flags.Snapshot())
	}

	logger.Info("pipeline: verification complete",
		zap.String("verdict", string(jc.Meta.Verdict)),
		zap.Int("risk_score", jc.Meta.RiskScore))
	return r.result(id, jc, start)
}

func (r *Runner) result(id uuid.UUID, jc *types.JobContext, start time.Time) *types.Result {
	end := r.now()
	return &types.Result{
		ID:         id,
		Verdict:    jc.Meta.Verdict,
		RiskScore:  jc.Meta.RiskScore,
		Confidence: jc.Meta.Confidence,
		Flags:      jc.Flags.Snapshot(),
		Meta:       jc.Meta.Snapshot(),
		Source: types.Source{
			URL:     jc.URL,
			Title:   jc.Title,
			Company: jc.Company,
		},
		Recommendation: synthesis.Recommendation(jc.Meta.Verdict, jc.Meta.TrustedDomain, jc.Meta.ScrapingIncomplete),
		CreatedAt:      end,
		DurationMS:     end.Sub(start).Milliseconds(),
	}
}

func (r *Runner) errorResult(id uuid.UUID, jc *types.JobContext, err error, start time.Time) *types.Result {
	res := r.result(id, jc, start)
	res.Verdict = types.VerdictError
	res.RiskScore = 0
	res.Confidence = 0
	res.Recommendation = synthesis.Recommendation(types.VerdictError, false, false)

	var agentErr *types.AgentError
	if errors.As(err, &agentErr) {
		res.Reason = agentErr.Message
	} else {
		res.Reason = err.Error()
	}
	return res
}

func (r *Runner) emit(ctx context.Context, id uuid.UUID, step, message string, content any) {
	reqCB, _ := ctx.Value(progressKey{}).(ProgressCallback)
	if r.onProgress == nil && reqCB == nil {
		return
	}
	event := ProgressEvent{
		Step:     step,
		Category: steps.Category(step),
		Message:  message,
		RunID:    id.String(),
		Content:  content,
	}
	if r.onProgress != nil {
		r.onProgress(event)
	}
	if reqCB != nil {
		reqCB(event)
	}
}

// stageSummary describes what a stage left behind, for progress events.
func stageSummary(stage string, jc *types.JobContext) string {
	switch stage {
	case ingestion.StageName:
		return fmt.Sprintf("Acquired %q via %s (%d tokens)", jc.Title, jc.Meta.ScrapingMethod, jc.Meta.TokenCount)
	case synthesis.StageName:
		return fmt.Sprintf("Verdict %s with risk score %d", jc.Meta.Verdict, jc.Meta.RiskScore)
	default:
		return fmt.Sprintf("Completed with %d flags so far", jc.Flags.Total())
	}
}

func validateURL(rawURL string) (string, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return "", ErrInvalidURL
	}
	parsed, err := url.Parse(u)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, u)
	}
	return u, nil
}

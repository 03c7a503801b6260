package fetch

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/config"
)

// Capabilities describes which rendering paths a PageFetcher can take.
type Capabilities struct {
	BrowserEnabled bool
	EngineA        bool
	EngineB        bool
}

// AnyEngine reports whether at least one render engine is present.
func (c Capabilities) AnyEngine() bool {
	return c.EngineA || c.EngineB
}

// PageFetcher retrieves posting pages. Fetch failures are errors;
// render failures only report ok=false so acquisition can keep its plain-HTTP result.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	RenderA(ctx context.Context, url string) (string, bool)
	RenderB(ctx context.Context, url string) (string, bool)
	Capabilities() Capabilities
}

// renderFunc matches WithChromedp and WithRod.
type renderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Fetcher is the production PageFetcher: net/http for plain GETs, chromedp as engine A and rod as engine B.
type Fetcher struct {
	opts          *Options
	renderTimeout time.Duration
	caps          Capabilities
	engineA       renderFunc
	engineB       renderFunc
}

// NewFetcher builds a Fetcher from the fetch section of the configuration.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	opts := DefaultOptions()
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	opts.Client = &http.Client{Timeout: opts.Timeout}

	f := &Fetcher{
		opts:          opts,
		renderTimeout: cfg.RenderTimeout,
		caps: Capabilities{
			BrowserEnabled: cfg.BrowserEnabled,
			EngineA:        cfg.Chromedp,
			EngineB:        cfg.Rod,
		},
	}
	if cfg.Chromedp {
		f.engineA = WithChromedp
	}
	if cfg.Rod {
		f.engineB = WithRod
	}
	return f
}

// Capabilities implements PageFetcher
func (f *Fetcher) Capabilities() Capabilities {
	return f.caps
}

// Fetch performs a plain GET and returns the decoded HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	res, err := URL(ctx, url, f.opts)
	if err != nil {
		return "", err
	}
	return res.HTML, nil
}

// RenderA renders through chromedp.
func (f *Fetcher) RenderA(ctx context.Context, url string) (string, bool) {
	return f.render(ctx, "chromedp", f.engineA, url)
}

// RenderB renders through rod.
func (f *Fetcher) RenderB(ctx context.Context, url string) (string, bool) {
	return f.render(ctx, "rod", f.engineB, url)
}

func (f *Fetcher) render(ctx context.Context, name string, engine renderFunc, url string) (string, bool) {
	if engine == nil || !f.caps.BrowserEnabled {
		return "", false
	}
	html, err := engine(ctx, url, f.renderTimeout)
	if err != nil {
		zap.L().Debug("fetch: render failed", zap.String("engine", name), zap.String("url", url), zap.Error(err))
		return "", false
	}
	return html, html != ""
}

package fetch

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// WithRod renders a page through a rod-managed Chromium and returns the rendered HTML.
// It launches its own browser so a chromedp failure does not poison the second attempt.
func WithRod(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	zap.L().Debug("rod: rendering", zap.String("url", url))

	l := launcher.New().Context(ctx).Headless(true).NoSandbox(true)
	controlURL, err := l.Launch()
	if err != nil {
		return "", eris.Wrap(err, "rod: launch browser")
	}
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", eris.Wrap(err, "rod: connect")
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", eris.Wrap(err, "rod: open page")
	}
	defer func() { _ = page.Close() }()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: DefaultUserAgent}); err != nil {
		zap.L().Debug("rod: user agent override failed", zap.Error(err))
	}
	if err := page.Navigate(url); err != nil {
		return "", eris.Wrap(err, "rod: navigate")
	}
	if err := page.WaitLoad(); err != nil {
		return "", eris.Wrap(err, "rod: wait for load")
	}
	// Give client-side rendering a moment after the load event
	if err := page.WaitIdle(2 * time.Second); err != nil {
		zap.L().Debug("rod: page never went idle", zap.Error(err))
	}

	html, err := page.HTML()
	if err != nil {
		return "", eris.Wrap(err, "rod: read html")
	}

	zap.L().Debug("rod: rendered", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}

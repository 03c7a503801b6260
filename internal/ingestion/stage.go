// Package ingestion acquires job postings: it fetches the page, escalates to a headless
// browser when a trusted site renders with JavaScript, and extracts the posting fields and
// contact signals into a JobContext.
package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/fetch"
	"github.com/jonathan/job-verifier/internal/trust"
	"github.com/jonathan/job-verifier/internal/types"
)

// StageName identifies acquisition failures.
const StageName = "data_acquisition"

// MinDescriptionLength is the description length below which a scrape is considered incomplete.
const MinDescriptionLength = 100

// Scraping methods recorded in meta.
const (
	MethodHTTP     = "http"
	MethodChromedp = "chromedp"
	MethodRod      = "rod"
)

// Scraping statuses recorded in insights.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
)

// Acquirer is the data acquisition stage.
type Acquirer struct {
	fetcher fetch.PageFetcher
	now     func() time.Time
}

// NewAcquirer creates an acquisition stage over fetcher.
func NewAcquirer(fetcher fetch.PageFetcher) *Acquirer {
	return &Acquirer{fetcher: fetcher, now: time.Now}
}

// Name implements the pipeline stage contract.
func (a *Acquirer) Name() string {
	return StageName
}

// Run fetches jc.URL and populates the posting fields, meta and acquisition flags.
// The only errors returned are *types.AgentError for a failed fetch or an authentication wall.
func (a *Acquirer) Run(ctx context.Context, jc *types.JobContext) error {
	original := jc.URL
	target := NormalizeURL(jc.URL)
	jc.URL = target
	host := trust.Host(target)
	trusted := trust.IsTrusted(host)
	platform := fetch.DetectPlatform(target)
	caps := a.fetcher.Capabilities()
	escalate := trusted && caps.BrowserEnabled && caps.AnyEngine()

	var page *Page
	html, fetchErr := a.fetcher.Fetch(ctx, target)
	switch {
	case fetchErr == nil:
		var err error
		if page, err = ParsePage(html, platform); err != nil {
			return types.NewAgentError(StageName, err, "Failed to fetch URL: %v", err)
		}
	case escalate:
		zap.L().Debug("acquisition: plain fetch failed, trying render engines",
			zap.String("url", target), zap.Error(fetchErr))
		page = emptyPage()
	default:
		zap.L().Warn("acquisition: fetch failed", zap.String("url", target), zap.Error(fetchErr))
		return types.NewAgentError(StageName, fetchErr, "Failed to fetch URL: %v", fetchErr)
	}
	method := MethodHTTP

	if page.DescriptionLength() < MinDescriptionLength && escalate {
		html, page, method = a.escalate(ctx, target, platform, html, page)
	}
	if fetchErr != nil && method == MethodHTTP {
		zap.L().Warn("acquisition: fetch failed and no render succeeded", zap.String("url", target), zap.Error(fetchErr))
		return types.NewAgentError(StageName, fetchErr, "Failed to fetch URL: %v", fetchErr)
	}

	if page.HasPaywall() {
		jc.AddFlag(types.CategoryAcquisition, "Page requires login or authentication")
		return types.NewAgentError(StageName, nil,
			"Cannot access job posting - login required. Detected signs of authentication wall. "+
				"For LinkedIn jobs, you may need to be logged in. Try: 1) Log into LinkedIn in browser, "+
				"2) Use Indeed/Glassdoor, 3) Visit company career page directly. Original URL: %s", original)
	}

	jc.RawPageContent = html
	jc.Title = page.Title
	jc.Company = page.Company
	jc.Description = page.Description
	jc.Meta.ScrapingMethod = method
	if trusted {
		jc.Meta.TrustedDomain = true
	}

	descLen := page.DescriptionLength()
	status, reason := StatusComplete, "Description length sufficient for analysis."
	if descLen < MinDescriptionLength {
		status = StatusIncomplete
		var flag string
		flag, reason = incompleteReason(trusted, method, caps, descLen)
		jc.AddFlag(types.CategoryAcquisition, flag)
		if trusted {
			jc.Meta.ScrapingIncomplete = true
		}
		jc.Meta.ScrapingIncompleteReason = reason
	} else if method != MethodHTTP {
		jc.Meta.JSRenderingUsed = true
	}

	now := a.now().UTC()
	jc.TrimmedDescription = types.TrimDescription(jc.Description)
	jc.Meta.ScrapedAt = &now
	jc.Meta.SourceDomain = host
	jc.Meta.TokenCount = len(strings.Fields(jc.TrimmedDescription))

	jc.ContactEmails = ExtractEmails(jc.Description)
	jc.ContactChannels = ExtractChannels(jc.Description)
	jc.SalaryMentions = ExtractSalaries(jc.Description)

	flagMissingData(jc, trusted)

	jc.Meta.Insights.Scraping = &types.ScrapingInsight{
		Method:            method,
		DescriptionLength: descLen,
		Status:            status,
		Reason:            reason,
		LastUpdated:       now,
	}
	return nil
}

// escalate renders target with engine A then engine B while the description stays short.
// A render replaces the page only when its description is strictly longer.
func (a *Acquirer) escalate(ctx context.Context, target string, platform fetch.Platform, html string, page *Page) (string, *Page, string) {
	method := MethodHTTP
	renders := []struct {
		method string
		render func(context.Context, string) (string, bool)
	}{
		{MethodChromedp, a.fetcher.RenderA},
		{MethodRod, a.fetcher.RenderB},
	}
	for _, r := range renders {
		if page.DescriptionLength() >= MinDescriptionLength {
			break
		}
		rendered, ok := r.render(ctx, target)
		if !ok {
			continue
		}
		candidate, err := ParsePage(rendered, platform)
		if err != nil || candidate.DescriptionLength() <= page.DescriptionLength() {
			continue
		}
		if candidate.Title == TitleNotFound {
			candidate.Title = page.Title
		}
		if candidate.Company == CompanyNotFound {
			candidate.Company = page.Company
		}
		html, page, method = rendered, candidate, r.method
		zap.L().Debug("acquisition: render improved description",
			zap.String("engine", r.method), zap.Int("length", page.DescriptionLength()))
	}
	return html, page, method
}

// incompleteReason picks the acquisition flag and the meta reason for a short description.
func incompleteReason(trusted bool, method string, caps fetch.Capabilities, descLen int) (flag, reason string) {
	if !trusted {
		return fmt.Sprintf("Job description very short (%d chars) - may be incomplete or behind paywall", descLen),
			"Non-trusted domain with very short content; manual review required."
	}

	switch {
	case method != MethodHTTP:
		return fmt.Sprintf("Description still short after %s rendering (%d chars)", method, descLen),
			fmt.Sprintf("Content remained short after %s rendering.", method)
	case !caps.AnyEngine():
		return "Unable to extract full description - enable a headless browser engine for JS rendering support.",
			"Enable chromedp or rod to render the full job posting."
	case !caps.BrowserEnabled:
		return "Unable to extract full description - site uses JavaScript. Browser support available but disabled.",
			"Browser automation disabled; page likely requires JavaScript to render."
	default:
		return "Unable to extract full description even with http. Visit URL directly.",
			"JavaScript rendering attempted but content remained truncated."
	}
}

func flagMissingData(jc *types.JobContext, trusted bool) {
	if jc.Title == TitleNotFound {
		jc.AddFlag(types.CategoryAcquisition, "Job title missing from page")
	}

	if jc.Description == DescriptionNotFound {
		if trusted {
			jc.AddFlag(types.CategoryAcquisition, "Unable to extract description from trusted site - may require JavaScript")
		} else {
			jc.AddFlag(types.CategoryAcquisition, "Job description missing from page")
		}
	}

	if len(jc.ContactEmails) == 0 {
		if trusted {
			jc.Meta.NoEmailExpected = true
		} else {
			jc.AddFlag(types.CategoryAcquisition, "No contact email found - verification limited")
		}
	}

	if len(jc.SalaryMentions) == 0 {
		if trusted {
			jc.Meta.NoSalaryExpected = true
		} else {
			jc.AddFlag(types.CategoryAcquisition, "No salary information found - financial analysis limited")
		}
	}
}

package research

import (
	"net/url"
	"strings"

	"github.com/jonathan/job-verifier/internal/trust"
	"github.com/jonathan/job-verifier/internal/types"
)

// extractDomainFromURL extracts the host from a URL, without "www."
func extractDomainFromURL(urlStr string) string {
	if urlStr == "" {
		return ""
	}

	// Prepend scheme if missing
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// IsFromCompanyDomain checks if a URL is hosted on the company domain or one of its subdomains
func IsFromCompanyDomain(urlStr string, companyDomain string) bool {
	urlDomain := extractDomainFromURL(urlStr)
	if urlDomain == "" || companyDomain == "" {
		return false
	}

	companyDomain = strings.ToLower(companyDomain)
	return urlDomain == companyDomain || strings.HasSuffix(urlDomain, "."+companyDomain)
}

// IsThirdParty checks if a URL is a social network or job board page rather than the employer's own presence
func IsThirdParty(urlStr string) bool {
	urlLower := strings.ToLower(urlStr)
	if strings.Contains(urlLower, "linkedin.com") || strings.Contains(urlLower, "facebook.com") {
		return true
	}
	return trust.IsJobBoard(urlLower)
}

// IsReviewSite checks if a URL belongs to an employee review platform
func IsReviewSite(urlStr string) bool {
	urlLower := strings.ToLower(urlStr)
	for _, domain := range ReviewDomains {
		if strings.Contains(urlLower, domain) {
			return true
		}
	}
	return false
}

// LooksLikeScamReport checks a hit's title, snippet and URL for scam vocabulary
func LooksLikeScamReport(hit types.SearchHit) bool {
	text := strings.ToLower(hit.Title + " " + hit.Snippet + " " + hit.URL)
	for _, keyword := range ScamKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// filterHits keeps the hits accepted by keep.
func filterHits(hits []types.SearchHit, keep func(types.SearchHit) bool) []types.SearchHit {
	var out []types.SearchHit
	for _, h := range hits {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}

// webSources drops third-party hits and tags the rest official or external.
func webSources(hits []types.SearchHit, companyDomain string, limit int) []types.WebSource {
	var sources []types.WebSource
	for _, h := range hits {
		if strings.TrimSpace(h.URL) == "" || IsThirdParty(h.URL) {
			continue
		}
		tag := "external"
		if IsFromCompanyDomain(h.URL, companyDomain) {
			tag = "official"
		}
		sources = append(sources, types.WebSource{SearchHit: h, Tag: tag})
		if len(sources) >= limit {
			break
		}
	}
	return sources
}

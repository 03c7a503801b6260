package ingestion

import (
	"strings"

	"github.com/jonathan/job-verifier/internal/trust"
	"github.com/jonathan/job-verifier/internal/types"
)

// FromPosting builds a JobContext from a posting the caller already scraped.
// Provided contact signals are normalized like extracted ones; signals the posting omits
// are extracted from its text.
func FromPosting(p *types.Posting) *types.JobContext {
	jc := types.NewJobContext(p.URL)
	host := trust.Host(p.URL)

	jc.Title = strings.TrimSpace(p.Title)
	jc.Company = strings.TrimSpace(p.Company)
	if jc.Company == "" {
		jc.Company = CompanyNotFound
	}
	jc.Description = CleanText(p.Description)
	jc.TrimmedDescription = types.TrimDescription(jc.Description)

	text := jc.Description
	jc.ContactEmails = dedupe(p.ContactEmails, normalizeToken)
	if len(jc.ContactEmails) == 0 {
		jc.ContactEmails = ExtractEmails(text)
	}
	jc.ContactChannels = dedupe(p.ContactChannels, normalizeToken)
	if len(jc.ContactChannels) == 0 {
		jc.ContactChannels = ExtractChannels(text)
	}
	jc.SalaryMentions = dedupe(p.SalaryMentions, strings.TrimSpace)
	if len(jc.SalaryMentions) == 0 {
		jc.SalaryMentions = ExtractSalaries(text)
	}

	jc.Meta.ScrapingMethod = "provided"
	jc.Meta.SourceDomain = host
	jc.Meta.TrustedDomain = trust.IsTrusted(host)
	jc.Meta.TokenCount = len(strings.Fields(jc.TrimmedDescription))
	return jc
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/trust"
	"github.com/jonathan/job-verifier/internal/types"
)

// StageName identifies the source verification stage.
const StageName = "source_verification"

// verificationPenalty is deducted from the verification score per verification flag.
const verificationPenalty = 20

// Verifier checks the posting's contact details against its source and then runs company intelligence.
type Verifier struct {
	intel *Investigator
}

// NewVerifier creates the source verification stage. A nil investigator skips company intelligence.
func NewVerifier(intel *Investigator) *Verifier {
	return &Verifier{intel: intel}
}

// Name implements the pipeline stage contract.
func (v *Verifier) Name() string { return StageName }

// Run records verification flags and the verification score.
func (v *Verifier) Run(ctx context.Context, jc *types.JobContext) error {
	if jc.Meta.ScrapingIncomplete {
		jc.Meta.Insights.SourceVerification = &types.NoteInsight{
			Note: "Source verification skipped due to incomplete scrape",
		}
		jc.Meta.VerificationScore = types.IntPtr(100)
		return nil
	}

	host := trust.Host(jc.URL)
	checkEmails(jc, host)

	if c := strings.ToLower(strings.TrimSpace(jc.Company)); c == "company not found" || c == "unknown" || c == "" {
		jc.AddFlag(types.CategoryVerification, "Company name is missing or generic")
	}
	for _, channel := range jc.ContactChannels {
		jc.AddFlag(types.CategoryVerification, "Job relies on consumer messaging app: "+channel)
	}

	score := max(0, 100-verificationPenalty*jc.Flags.Count(types.CategoryVerification))
	jc.Meta.VerificationScore = types.IntPtr(score)
	zap.L().Debug("research: source verified", zap.String("host", host), zap.Int("score", score))

	if v.intel != nil {
		v.intel.Investigate(ctx, jc)
	}
	return nil
}

func checkEmails(jc *types.JobContext, host string) {
	if len(jc.ContactEmails) == 0 {
		switch {
		case jc.Meta.NoEmailExpected:
			jc.Meta.Insights.SourceVerification = &types.NoteInsight{Note: "No contact email expected for this platform"}
		case trust.HidesEmails(host):
			jc.Meta.Insights.SourceVerification = &types.NoteInsight{Note: "Platform typically hides recruiter emails"}
		default:
			jc.AddFlag(types.CategoryVerification, "No contact email found in posting")
		}
		return
	}

	seen := make(map[string]bool)
	for _, email := range jc.ContactEmails {
		d := trust.EmailDomain(email)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true

		switch {
		case trust.IsGenericEmailDomain(d):
			jc.AddFlag(types.CategoryVerification, "Contact email uses generic domain: "+d)
		case trust.HasSuspiciousTLD(d):
			jc.AddFlag(types.CategoryVerification, "Email domain uses uncommon TLD: "+d)
		case !strings.Contains(host, d):
			jc.AddFlag(types.CategoryVerification, fmt.Sprintf("Contact email domain %s differs from source domain %s", d, host))
		}
	}
}

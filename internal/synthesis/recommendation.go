package synthesis

import "github.com/jonathan/job-verifier/internal/types"

// Recommendation returns the user-facing advice for a verdict.
func Recommendation(verdict types.Verdict, trusted, incomplete bool) string {
	switch {
	case verdict == types.VerdictError:
		return "Verification could not be completed. Open the posting directly and review it manually."
	case verdict == types.VerdictIncompleteData:
		return "Unable to analyze fully - site uses JavaScript rendering. " +
			"Visit the URL directly in your browser to review the full job posting. " +
			"Domain appears to be from a known employment platform."
	case verdict == types.VerdictFake:
		return "HIGH RISK - Multiple red flags detected. Proceed with extreme caution or avoid this posting."
	case verdict == types.VerdictSuspicious:
		return "CAUTION - Some concerning signals found. Research the company independently before applying."
	case trusted && incomplete:
		return "Trusted domain but incomplete scraping. Visit the job page directly to review full details."
	default:
		return "No major red flags detected. Still verify company legitimacy independently before sharing personal info."
	}
}

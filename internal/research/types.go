// Package research verifies the posting's source and gathers open-source intelligence about the employer.
package research

import (
	"fmt"
	"strings"
)

// Statuses recorded in company intelligence.
const (
	StatusFound      = "found"
	StatusNotFound   = "not_found"
	StatusNoCompany  = "no_company"
	StatusNotVisible = "not_visible"

	DomainAgeOK              = "ok"
	DomainAgeNoDomain        = "no_domain"
	DomainAgeLookupFailed    = "lookup_failed"
	DomainAgeCreationMissing = "creation_date_missing"
)

// ScamKeywords mark a search hit as a scam report.
var ScamKeywords = []string{"scam", "fraud", "complaint", "lawsuit", "ripoff", "warning"}

// ReviewDomains host employee reviews.
var ReviewDomains = []string{
	"glassdoor.com",
	"indeed.com",
	"comparably.com",
	"ambitionbox.com",
	"trustpilot.com",
}

// ProbePaths are tried in order on the company domain; the first page with a matching heading wins.
var ProbePaths = []string{"careers", "career", "jobs", "about", "company"}

// Search queries issued for a company.
func officialSiteQuery(company string) string { return company + " official site" }
func webPresenceQuery(company string) string  { return company + " company overview" }
func pressQuery(company string) string        { return company + " press release" }
func reviewsQuery(company string) string      { return company + " Glassdoor reviews" }
func scamQuery(company string) string         { return company + " scam warning" }

// HRQueries returns the searches used to surface HR and recruiting contacts.
func HRQueries(company, domain, jobRole string) []string {
	queries := []string{
		fmt.Sprintf(`"%s" "HR email"`, company),
		fmt.Sprintf(`"%s" "recruiting contact"`, company),
		fmt.Sprintf(`"%s" "talent acquisition" email`, company),
	}
	if domain != "" {
		queries = append(queries,
			fmt.Sprintf(`site:%s "contact" "hr"`, domain),
			fmt.Sprintf(`site:%s "recruiting"`, domain),
		)
	}
	roleHint := strings.TrimSpace(strings.Split(jobRole, ",")[0])
	if n := len(strings.Fields(roleHint)); n >= 2 && n <= 5 {
		queries = append(queries, fmt.Sprintf(`"%s" "%s" contact`, company, roleHint))
	}
	return queries
}

package ingestion

import (
	"net/url"
	"regexp"
	"strings"
)

var linkedInViewPattern = regexp.MustCompile(`/jobs/view/(\d+)`)

// NormalizeURL rewrites LinkedIn search and tracking URLs to the canonical
// https://www.linkedin.com/jobs/view/<id> form. Other URLs are returned unchanged.
// Applying it twice yields the same result as applying it once.
func NormalizeURL(rawURL string) string {
	if !strings.Contains(strings.ToLower(rawURL), "linkedin.com") {
		return rawURL
	}

	if strings.Contains(rawURL, "currentJobId=") {
		if u, err := url.Parse(rawURL); err == nil {
			if id := u.Query().Get("currentJobId"); id != "" {
				return "https://www.linkedin.com/jobs/view/" + id
			}
		}
	}

	if m := linkedInViewPattern.FindStringSubmatch(rawURL); m != nil {
		return "https://www.linkedin.com/jobs/view/" + m[1]
	}

	return rawURL
}

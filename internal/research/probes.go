package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/fetch"
)

// Default public endpoints.
const (
	DefaultRDAPEndpoint  = "https://rdap.org/domain/"
	DefaultEDGAREndpoint = "https://www.sec.gov/cgi-bin/browse-edgar"
)

var teamHeading = regexp.MustCompile(`(?i)careers|jobs|about|team`)

// rdapDomain is the subset of an RDAP domain response used for the registration date.
type rdapDomain struct {
	Events []struct {
		Action string `json:"eventAction"`
		Date   string `json:"eventDate"`
	} `json:"events"`
}

// domainAge looks up the registration date of domain over RDAP and
// returns a label such as "12y 3m (since 2013-11-02)" with a status.
func (inv *Investigator) domainAge(ctx context.Context, domain string) (string, string) {
	if domain == "" {
		return "", DomainAgeNoDomain
	}

	res, err := fetch.URL(ctx, inv.opts.RDAPEndpoint+url.PathEscape(domain), inv.fetchOptions(map[string]string{
		"Accept": "application/rdap+json, application/json",
	}))
	if err != nil {
		zap.L().Debug("research: rdap lookup failed", zap.String("domain", domain), zap.Error(err))
		return "", DomainAgeLookupFailed
	}

	var record rdapDomain
	if err := json.Unmarshal([]byte(res.HTML), &record); err != nil {
		zap.L().Debug("research: rdap response unreadable", zap.String("domain", domain), zap.Error(err))
		return "", DomainAgeLookupFailed
	}

	for _, ev := range record.Events {
		if ev.Action != "registration" {
			continue
		}
		created, err := time.Parse(time.RFC3339, ev.Date)
		if err != nil {
			continue
		}
		return ageLabel(created.UTC(), inv.now().UTC()), DomainAgeOK
	}
	return "", DomainAgeCreationMissing
}

// ageLabel renders the time since created in years and 30-day months, or days when younger than a month.
func ageLabel(created, now time.Time) string {
	days := max(int(now.Sub(created).Hours()/24), 0)
	years := days / 365
	months := (days % 365) / 30

	var label string
	if years > 0 || months > 0 {
		label = fmt.Sprintf("%dy %dm", years, months)
	} else {
		label = fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%s (since %s)", label, created.Format("2006-01-02"))
}

// probeOfficialPages returns the first careers or about page on domain whose h1 or h2 names careers, jobs, about or team.
func (inv *Investigator) probeOfficialPages(ctx context.Context, domain string) []string {
	if domain == "" {
		return nil
	}

	for _, path := range ProbePaths {
		pageURL := fmt.Sprintf("%s://%s/%s", inv.opts.SiteScheme, domain, path)
		res, err := fetch.URL(ctx, pageURL, inv.fetchOptions(nil))
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
		if err != nil {
			continue
		}
		found := false
		doc.Find("h1, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = teamHeading.MatchString(s.Text())
			return !found
		})
		if found {
			return []string{pageURL}
		}
	}
	return nil
}

// hasRecentFilings reports whether SEC EDGAR lists any company matching name.
func (inv *Investigator) hasRecentFilings(ctx context.Context, company string) bool {
	if company == "" {
		return false
	}

	q := url.Values{}
	q.Set("company", company)
	q.Set("owner", "exclude")
	q.Set("action", "getcompany")
	q.Set("count", "10")

	res, err := fetch.URL(ctx, inv.opts.EDGAREndpoint+"?"+q.Encode(), inv.fetchOptions(nil))
	if err != nil {
		zap.L().Debug("research: edgar lookup failed", zap.String("company", company), zap.Error(err))
		return false
	}
	return !strings.Contains(res.HTML, "No matching")
}

// pageText fetches a page for contact mining, returning "" on any failure.
func (inv *Investigator) pageText(ctx context.Context, pageURL string) string {
	res, err := fetch.URL(ctx, pageURL, inv.fetchOptions(nil))
	if err != nil {
		return ""
	}
	return res.HTML
}

func (inv *Investigator) fetchOptions(headers map[string]string) *fetch.Options {
	return &fetch.Options{
		Timeout:   inv.opts.Timeout,
		UserAgent: fetch.DefaultUserAgent,
		Headers:   headers,
		Client:    inv.opts.Client,
	}
}

package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-verifier/internal/ingestion"
	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/llm/llmtest"
	"github.com/jonathan/job-verifier/internal/pipeline/pipelinetest"
	"github.com/jonathan/job-verifier/internal/search"
	"github.com/jonathan/job-verifier/internal/types"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// rewriteTransport sends every request to target, keeping the path and
// recording the original host in X-Original-Host.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("X-Original-Host", req.URL.Hostname())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

// osintWeb serves the RDAP, EDGAR and company pages for acmeanvils.com.
func osintWeb(w http.ResponseWriter, r *http.Request) {
	host := r.Header.Get("X-Original-Host")
	switch {
	case r.URL.Path == "/domain/acmeanvils.com":
		w.Header().Set("Content-Type", "application/rdap+json")
		_, _ = w.Write([]byte(`{"events": [
			{"eventAction": "last changed", "eventDate": "2025-06-01T00:00:00Z"},
			{"eventAction": "registration", "eventDate": "2015-01-10T08:30:00Z"}
		]}`))
	case r.URL.Path == "/cgi-bin/browse-edgar":
		if r.URL.Query().Get("company") == "Acme Anvils" {
			_, _ = w.Write([]byte("<html><body>ACME ANVILS INC 10-K</body></html>"))
			return
		}
		_, _ = w.Write([]byte("<html><body>No matching companies.</body></html>"))
	case host == "acmeanvils.com" && r.URL.Path == "/careers":
		_, _ = w.Write([]byte("<html><body><h1>Careers at Acme</h1></body></html>"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestInvestigator(t *testing.T, ws search.WebSearch, gw llm.Gateway) *Investigator {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(osintWeb))
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	inv := NewInvestigator(ws, gw, Options{
		Timeout: 2 * time.Second,
		Client:  &http.Client{Transport: rewriteTransport{target: target}, Timeout: 2 * time.Second},
	})
	inv.now = func() time.Time { return fixedNow }
	return inv
}

func acmeSearch() *pipelinetest.Search {
	return &pipelinetest.Search{Results: map[string][]search.Result{
		"company overview": {
			{Title: "Acme Anvils | About", URL: "https://acmeanvils.com/about"},
			{Title: "Acme Anvils | LinkedIn", URL: "https://www.linkedin.com/company/acme-anvils"},
			{Title: "Acme Anvils profile", URL: "https://news.example.org/acme-anvils"},
		},
		"press release": {
			{Title: "Acme opens new forge", URL: "https://news.example.org/forge"},
			{Title: "Acme wins award", URL: "https://press.example.net/award"},
		},
		"Glassdoor reviews": {
			{Title: "Acme Anvils Reviews", URL: "https://www.glassdoor.com/Reviews/Acme-Anvils.htm"},
			{Title: "Acme blog", URL: "https://blog.example.com/acme"},
		},
		"HR email": {
			{Title: "Talent Team | Acme Anvils", URL: "https://acmeanvils.com/contact", Snippet: "Write to talent@acmeanvils.com"},
			{Title: "Someone else", URL: "https://www.linkedin.com/in/someone", Snippet: "hr@acmeanvils.com"},
		},
	}}
}

func acmeJob() *types.JobContext {
	jc := types.NewJobContext("https://careers.acmeanvils.com/jobs/1")
	jc.Title = "Senior Welder"
	jc.Company = "Acme Anvils"
	jc.ContactEmails = []string{"jobs@acmeanvils.com"}
	jc.Meta.SourceDomain = "careers.acmeanvils.com"
	return jc
}

func TestInvestigate_EstablishedCompany(t *testing.T) {
	ws := acmeSearch()
	inv := newTestInvestigator(t, ws, llmtest.Down())
	jc := acmeJob()

	inv.Investigate(context.Background(), jc)

	intel := jc.Meta.CompanyIntel
	require.NotNil(t, intel)
	assert.Equal(t, "acmeanvils.com", intel.InferredDomain)
	assert.Equal(t, "acmeanvils.com", intel.CompanyDomain)
	assert.False(t, intel.TrustedInference)

	assert.Equal(t, DomainAgeOK, intel.DomainAgeStatus)
	assert.Equal(t, "11y 2m (since 2015-01-10)", intel.DomainAge)
	assert.Equal(t, []string{"https://acmeanvils.com/careers"}, intel.TeamLinks)
	assert.True(t, intel.RecentFilings)

	require.Len(t, intel.WebPresence, 2)
	assert.Equal(t, "official", intel.WebPresence[0].Tag)
	assert.Equal(t, "external", intel.WebPresence[1].Tag)
	assert.Equal(t, StatusFound, intel.WebPresenceStatus)
	assert.Len(t, intel.PressMentions, 2)
	assert.Len(t, intel.EmployeeReviews, 1)
	assert.Empty(t, intel.ScamReports)

	require.Len(t, intel.HRContacts, 1)
	assert.Equal(t, "talent@acmeanvils.com", intel.HRContacts[0].Name)
	assert.Equal(t, "Talent Team", intel.HRContacts[0].Role)
	assert.Equal(t, StatusFound, intel.HRContactsStatus)

	// 20 base + 20 domain + 6 web + 3 hr + 4 press + 3 team + 10 filings + 5 reviews
	assert.Equal(t, 71, intel.LegitimacyScore)
	assert.Zero(t, jc.Flags.Count(types.CategoryIntelligence))

	assert.NotContains(t, strings.Join(ws.Queries(), "\n"), "official site",
		"a corporate email makes the official site lookup unnecessary")
}

func TestInvestigate_WeakUntrustedCompany(t *testing.T) {
	ws := &pipelinetest.Search{Results: map[string][]search.Result{
		"scam warning": {
			{Title: "Quick Cash Jobs scam warning", URL: "https://forum.example.com/t/quick-cash"},
			{Title: "Quick Cash Jobs homepage", URL: "https://quickcash.xyz"},
		},
	}}
	inv := newTestInvestigator(t, ws, llmtest.Down())

	jc := types.NewJobContext("https://quickcash.xyz/apply")
	jc.Company = "Quick Cash Jobs"

	inv.Investigate(context.Background(), jc)

	intel := jc.Meta.CompanyIntel
	require.NotNil(t, intel)
	assert.Equal(t, "quickcash.xyz", intel.CompanyDomain)
	assert.Equal(t, DomainAgeLookupFailed, intel.DomainAgeStatus)
	assert.Len(t, intel.ScamReports, 1)
	assert.Equal(t, StatusNotFound, intel.WebPresenceStatus)
	assert.Equal(t, StatusNotFound, intel.HRContactsStatus)
	assert.False(t, intel.RecentFilings)

	// 20 base + 20 domain - 25 scam
	assert.Equal(t, 15, intel.LegitimacyScore)
	assert.Equal(t, []string{
		"Unable to confirm public web presence for the company",
		"Potential scam warnings detected via open web search",
		"No HR or recruiting contacts surfaced in public search",
		"Company has weak online presence based on open-source checks",
	}, jc.Flags.Get(types.CategoryIntelligence))
}

func TestInvestigate_NoIdentifiers(t *testing.T) {
	ws := &pipelinetest.Search{}
	inv := newTestInvestigator(t, ws, llmtest.Down())

	jc := types.NewJobContext("")
	jc.Company = ingestion.CompanyNotFound

	inv.Investigate(context.Background(), jc)

	require.NotNil(t, jc.Meta.CompanyIntel)
	assert.Equal(t, []string{"No company identifiers available for open-source checks"},
		jc.Flags.Get(types.CategoryIntelligence))
	assert.Empty(t, ws.Queries())
}

func TestInvestigate_TrustedBoardWithoutCompanyStaysQuiet(t *testing.T) {
	inv := newTestInvestigator(t, &pipelinetest.Search{}, llmtest.Down())

	jc := types.NewJobContext("https://www.linkedin.com/jobs/view/42")
	jc.Company = ingestion.CompanyNotFound
	jc.Meta.TrustedDomain = true

	inv.Investigate(context.Background(), jc)

	intel := jc.Meta.CompanyIntel
	require.NotNil(t, intel)
	assert.True(t, intel.TrustedInference)
	assert.Empty(t, intel.CompanyDomain)
	assert.Equal(t, DomainAgeNoDomain, intel.DomainAgeStatus)
	assert.Equal(t, StatusNoCompany, intel.WebPresenceStatus)
	assert.Equal(t, StatusNotVisible, intel.HRContactsStatus)
	assert.Equal(t, 35, intel.LegitimacyScore)
	assert.Zero(t, jc.Flags.Count(types.CategoryIntelligence))
}

func TestInvestigate_InfersDomainFromSearch(t *testing.T) {
	ws := &pipelinetest.Search{Results: map[string][]search.Result{
		"official site": {
			{Title: "Acme on Indeed", URL: "https://www.indeed.com/cmp/acme"},
			{Title: "Acme Anvils", URL: "https://www.acmeanvils.com/"},
		},
	}}
	inv := newTestInvestigator(t, ws, llmtest.Down())

	jc := types.NewJobContext("https://www.indeed.com/viewjob?jk=1")
	jc.Company = "Acme Anvils"
	jc.ContactEmails = []string{"acme.hiring@gmail.com"}

	inv.Investigate(context.Background(), jc)

	intel := jc.Meta.CompanyIntel
	require.NotNil(t, intel)
	assert.Equal(t, "www.acmeanvils.com", intel.InferredDomain)
	assert.Equal(t, "acmeanvils.com", intel.CompanyDomain)
	assert.False(t, intel.TrustedInference)
}

func TestInvestigate_LLMRefinesAndAssesses(t *testing.T) {
	gw := &llmtest.Gateway{
		Up: true,
		StructFunc: func(req llm.ChatRequest) (map[string]any, bool) {
			if strings.Contains(req.Prompt, "genuine HR or recruiting touchpoints") {
				return map[string]any{"contacts": []any{
					map[string]any{"name": "talent@acmeanvils.com", "role": "Recruiter", "profile": "https://acmeanvils.com/contact"},
					map[string]any{"name": "Jane Doe", "role": "Agent", "profile": "https://other.example.com/jane"},
				}}, true
			}
			return map[string]any{
				"summary":    "Established anvil manufacturer.",
				"alerts":     []any{"Ownership changed recently"},
				"confidence": 82,
			}, true
		},
	}
	inv := newTestInvestigator(t, acmeSearch(), gw)
	jc := acmeJob()

	inv.Investigate(context.Background(), jc)

	intel := jc.Meta.CompanyIntel
	require.NotNil(t, intel)
	require.Len(t, intel.HRContacts, 1)
	assert.Equal(t, "Recruiter", intel.HRContacts[0].Role)
	assert.Equal(t, "Established anvil manufacturer.", intel.LLMSummary)
	assert.Equal(t, 82, intel.LLMConfidence)
	assert.Equal(t, []string{"Ownership changed recently"}, jc.Flags.Get(types.CategoryIntelligence))
	assert.Equal(t, 1, gw.CallsMatching("evaluate employer trustworthiness"))
}

func TestInvestigate_MalformedAssessmentIgnored(t *testing.T) {
	gw := &llmtest.Gateway{
		Up: true,
		StructFunc: func(llm.ChatRequest) (map[string]any, bool) {
			return map[string]any{"confidence": 400}, true
		},
	}
	inv := newTestInvestigator(t, acmeSearch(), gw)
	jc := acmeJob()

	inv.Investigate(context.Background(), jc)

	intel := jc.Meta.CompanyIntel
	require.NotNil(t, intel)
	assert.Empty(t, intel.LLMSummary)
	assert.Zero(t, intel.LLMConfidence)
	assert.Len(t, intel.HRContacts, 1, "unusable refinement keeps the discovered contacts")
}

func TestAgeLabel(t *testing.T) {
	tests := []struct {
		name    string
		created time.Time
		now     time.Time
		want    string
	}{
		{"years and months", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), "1y 2m (since 2024-01-01)"},
		{"days only", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), "10d (since 2025-03-01)"},
		{"future date", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "0d (since 2027-01-01)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ageLabel(tt.created, tt.now))
		})
	}
}

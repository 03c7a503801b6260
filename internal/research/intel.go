package research

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-verifier/internal/ingestion"
	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/search"
	"github.com/jonathan/job-verifier/internal/trust"
	"github.com/jonathan/job-verifier/internal/types"
)

// weakPresenceThreshold is the legitimacy score below which an untrusted employer is flagged.
const weakPresenceThreshold = 40

// Options configures the network probes made during company intelligence.
type Options struct {
	RDAPEndpoint  string
	EDGAREndpoint string
	// SiteScheme is used when probing the company's own pages.
	SiteScheme string
	Timeout    time.Duration
	Client     *http.Client
}

// Investigator gathers open-source intelligence about an employer.
type Investigator struct {
	search search.WebSearch
	llm    llm.Gateway
	opts   Options
	now    func() time.Time
}

// NewInvestigator creates an Investigator. Empty options fall back to the public endpoints.
func NewInvestigator(ws search.WebSearch, gw llm.Gateway, opts Options) *Investigator {
	if ws == nil {
		ws = search.None
	}
	if opts.RDAPEndpoint == "" {
		opts.RDAPEndpoint = DefaultRDAPEndpoint
	}
	if opts.EDGAREndpoint == "" {
		opts.EDGAREndpoint = DefaultEDGAREndpoint
	}
	if opts.SiteScheme == "" {
		opts.SiteScheme = "https"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	return &Investigator{search: ws, llm: gw, opts: opts, now: time.Now}
}

func (inv *Investigator) llmReady(ctx context.Context) bool {
	return inv.llm != nil && inv.llm.Available(ctx)
}

// Investigate infers the company domain, runs the open-source probes concurrently
// and records the result in jc.Meta.CompanyIntel. Findings become intelligence flags.
func (inv *Investigator) Investigate(ctx context.Context, jc *types.JobContext) {
	company := strings.TrimSpace(jc.Company)
	if strings.EqualFold(company, ingestion.CompanyNotFound) {
		company = ""
	}
	jobRole := jc.Meta.JobRole
	if jobRole == "" {
		jobRole = jc.Title
	}
	sourceDomain := jc.Meta.SourceDomain
	if sourceDomain == "" {
		sourceDomain = trust.Host(jc.URL)
	}

	inferred := inv.inferDomain(ctx, jc.ContactEmails, sourceDomain, company)
	candidate := inferred
	if candidate == "" {
		candidate = sourceDomain
	}
	normalized := trust.Registrable(inferred)

	intel := &types.CompanyIntel{
		CompanyName:    company,
		SourceDomain:   sourceDomain,
		InferredDomain: inferred,
		CompanyDomain:  normalized,
		JobRole:        jobRole,
		TrustedInference: jc.Meta.TrustedDomain ||
			trust.IsEnterprise(candidate) ||
			trust.ContainsTrustedDomain(candidate) ||
			trust.MentionsBrand(company),
	}

	if candidate == "" && company == "" {
		jc.AddFlag(types.CategoryIntelligence, "No company identifiers available for open-source checks")
		jc.Meta.CompanyIntel = intel
		return
	}
	if normalized == "" && !intel.TrustedInference {
		jc.AddFlag(types.CategoryIntelligence, "Unable to determine official company domain from posting")
	}

	// Each probe writes only its own variable; results are merged after Wait.
	var (
		ageLabel, ageStatus string
		teamLinks           []string
		press, reviews      []types.SearchHit
		scam                []types.SearchHit
		presence            []types.WebSource
		filings             bool
		contacts            []types.Contact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ageLabel, ageStatus = inv.domainAge(gctx, normalized)
		return nil
	})
	g.Go(func() error {
		teamLinks = inv.probeOfficialPages(gctx, normalized)
		return nil
	})
	g.Go(func() error {
		if company != "" {
			press = inv.search.Search(gctx, pressQuery(company), 6)
		}
		return nil
	})
	g.Go(func() error {
		if company != "" {
			presence = webSources(inv.search.Search(gctx, webPresenceQuery(company), 6), normalized, 6)
		}
		return nil
	})
	g.Go(func() error {
		if company != "" {
			reviews = filterHits(inv.search.Search(gctx, reviewsQuery(company), 6), func(h types.SearchHit) bool {
				return IsReviewSite(h.URL)
			})
		}
		return nil
	})
	g.Go(func() error {
		if company != "" {
			scam = filterHits(inv.search.Search(gctx, scamQuery(company), 6), LooksLikeScamReport)
		}
		return nil
	})
	g.Go(func() error {
		filings = inv.hasRecentFilings(gctx, company)
		return nil
	})
	g.Go(func() error {
		contacts = inv.discoverHRContacts(gctx, company, normalized, jobRole)
		return nil
	})
	_ = g.Wait()

	intel.DomainAge, intel.DomainAgeStatus = ageLabel, ageStatus
	intel.TeamLinks = teamLinks
	intel.PressMentions = press
	intel.EmployeeReviews = reviews
	intel.ScamReports = scam
	intel.RecentFilings = filings
	intel.WebPresence = presence

	switch {
	case company == "":
		intel.WebPresenceStatus = StatusNoCompany
	case len(presence) > 0:
		intel.WebPresenceStatus = StatusFound
	default:
		intel.WebPresenceStatus = StatusNotFound
	}
	if intel.WebPresenceStatus == StatusNotFound && !intel.TrustedInference {
		jc.AddFlag(types.CategoryIntelligence, "Unable to confirm public web presence for the company")
	}
	if len(scam) > 0 {
		jc.AddFlag(types.CategoryIntelligence, "Potential scam warnings detected via open web search")
	}

	if refined, ok := inv.refineContacts(ctx, company, normalized, contacts); ok {
		contacts = refined
	}
	intel.HRContacts = contacts
	switch {
	case len(contacts) > 0:
		intel.HRContactsStatus = StatusFound
	case intel.TrustedInference:
		intel.HRContactsStatus = StatusNotVisible
	default:
		intel.HRContactsStatus = StatusNotFound
		jc.AddFlag(types.CategoryIntelligence, "No HR or recruiting contacts surfaced in public search")
	}

	intel.LegitimacyScore = LegitimacyScore(Signals{
		Trusted:     intel.TrustedInference,
		HasDomain:   normalized != "",
		WebPresence: len(presence),
		HRContacts:  len(contacts),
		Press:       len(press),
		TeamLinks:   len(teamLinks),
		Filings:     filings,
		Reviews:     len(reviews) > 0,
		ScamHits:    len(scam) > 0,
	})

	if assessment, ok := inv.assess(ctx, intel); ok {
		intel.LLMSummary = llm.String(assessment, "summary")
		intel.LLMConfidence = types.Clamp(llm.Int(assessment, "confidence", 0), 0, 100)
		for _, alert := range llm.Strings(assessment, "alerts") {
			jc.AddFlag(types.CategoryIntelligence, alert)
		}
	}

	jc.Meta.CompanyIntel = intel

	if !intel.TrustedInference && intel.LegitimacyScore < weakPresenceThreshold {
		jc.AddFlag(types.CategoryIntelligence, "Company has weak online presence based on open-source checks")
	}

	zap.L().Debug("research: company intelligence gathered",
		zap.String("company", company),
		zap.String("domain", normalized),
		zap.Int("legitimacy", intel.LegitimacyScore))
}

// inferDomain picks the employer's domain from a corporate contact email, then the
// source host unless it is a job board, then the first non-job-board official site hit.
func (inv *Investigator) inferDomain(ctx context.Context, emails []string, sourceDomain, company string) string {
	for _, email := range emails {
		d := trust.EmailDomain(email)
		if d != "" && strings.Contains(d, ".") && !trust.IsGenericEmailDomain(d) {
			return d
		}
	}
	if sourceDomain != "" && !trust.IsJobBoard(sourceDomain) {
		return sourceDomain
	}
	if company == "" {
		return ""
	}
	for _, hit := range inv.search.Search(ctx, officialSiteQuery(company), 5) {
		host := trust.Host(hit.URL)
		if host != "" && !trust.IsJobBoard(host) {
			return host
		}
	}
	return ""
}

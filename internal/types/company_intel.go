package types

// CompanyIntel is the open-source intelligence bundle gathered for an employer
type CompanyIntel struct {
	CompanyName       string      `json:"company_name,omitempty"`
	SourceDomain      string      `json:"source_domain,omitempty"`
	InferredDomain    string      `json:"inferred_domain,omitempty"`
	CompanyDomain     string      `json:"company_domain,omitempty"`
	JobRole           string      `json:"job_role,omitempty"`
	TrustedInference  bool        `json:"trusted_inference"`
	DomainAge         string      `json:"domain_age,omitempty"`
	DomainAgeStatus   string      `json:"domain_age_status,omitempty"`
	TeamLinks         []string    `json:"team_links,omitempty"`
	PressMentions     []SearchHit `json:"press_mentions,omitempty"`
	WebPresence       []WebSource `json:"web_presence,omitempty"`
	WebPresenceStatus string      `json:"web_presence_status,omitempty"`
	EmployeeReviews   []SearchHit `json:"employee_reviews,omitempty"`
	ScamReports       []SearchHit `json:"scam_reports,omitempty"`
	HRContacts        []Contact   `json:"hr_contacts,omitempty"`
	HRContactsStatus  string      `json:"hr_contacts_status,omitempty"`
	RecentFilings     bool        `json:"recent_filings"`
	LegitimacyScore   int         `json:"legitimacy_score"`
	LLMSummary        string      `json:"llm_summary,omitempty"`
	LLMConfidence     int         `json:"llm_confidence,omitempty"`
}

// SearchHit is one web search result
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSource is a search hit tagged as official (on the company domain) or external
type WebSource struct {
	SearchHit
	Tag string `json:"tag"`
}

// Contact is an HR or recruiting lead surfaced by public search
type Contact struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Profile string `json:"profile"`
}

// StructuredProfile is the normalized summary of a job posting
type StructuredProfile struct {
	URL                string   `json:"url"`
	JobTitle           string   `json:"job_title"`
	Company            string   `json:"company"`
	Team               string   `json:"team,omitempty"`
	Location           string   `json:"location,omitempty"`
	ExperienceRequired string   `json:"experience_required,omitempty"`
	EducationRequired  string   `json:"education_required,omitempty"`
	Skills             []string `json:"skills"`
	JobType            string   `json:"job_type,omitempty"`
	VerifiedDomain     string   `json:"verified_domain,omitempty"`
	AuthenticityScore  float64  `json:"authenticity_score"`
	ScrapedAt          string   `json:"scraped_at,omitempty"`
}

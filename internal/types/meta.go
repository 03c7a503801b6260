package types

import (
	"maps"
	"time"
)

// Meta holds the metadata stages record about a job context.
// Stages refine values written by earlier stages but never clear them.
type Meta struct {
	// Acquisition
	ScrapingMethod           string     `json:"scraping_method,omitempty"`
	ScrapingIncomplete       bool       `json:"scraping_incomplete"`
	ScrapingIncompleteReason string     `json:"scraping_incomplete_reason,omitempty"`
	TrustedDomain            bool       `json:"trusted_domain"`
	JSRenderingUsed          bool       `json:"js_rendering_used,omitempty"`
	ScrapedAt                *time.Time `json:"scraped_at,omitempty"`
	SourceDomain             string     `json:"source_domain,omitempty"`
	TokenCount               int        `json:"token_count"`
	NoEmailExpected          bool       `json:"no_email_expected,omitempty"`
	NoSalaryExpected         bool       `json:"no_salary_expected,omitempty"`

	// Content analysis
	JobRole           string `json:"job_role,omitempty"`
	ContentTokenCount int    `json:"content_token_count"`
	ContentScore      *int   `json:"content_score,omitempty"`

	// Source verification and company intelligence
	VerificationScore *int          `json:"verification_score,omitempty"`
	CompanyIntel      *CompanyIntel `json:"company_intel,omitempty"`

	// Financial risk
	FinancialScore *int `json:"financial_score,omitempty"`

	// Information extraction
	StructuredProfile *StructuredProfile `json:"structured_profile,omitempty"`

	// Risk synthesis
	RiskScore   int              `json:"risk_score"`
	Confidence  int              `json:"confidence"`
	Verdict     Verdict          `json:"verdict,omitempty"`
	FlagSummary map[Category]int `json:"flag_summary,omitempty"`

	Insights Insights `json:"insights"`

	// Extra carries pass-through values with no typed home, such as raw LLM fields.
	Extra map[string]any `json:"extra,omitempty"`
}

// SetExtra records a pass-through value, creating the map on first use.
func (m *Meta) SetExtra(key string, value any) {
	if m.Extra == nil {
		m.Extra = make(map[string]any)
	}
	m.Extra[key] = value
}

// Snapshot returns a copy whose maps can be mutated independently of m.
func (m *Meta) Snapshot() *Meta {
	cp := *m
	cp.Extra = maps.Clone(m.Extra)
	cp.FlagSummary = maps.Clone(m.FlagSummary)
	if m.CompanyIntel != nil {
		intel := *m.CompanyIntel
		cp.CompanyIntel = &intel
	}
	if m.StructuredProfile != nil {
		profile := *m.StructuredProfile
		cp.StructuredProfile = &profile
	}
	return &cp
}

// Insights holds per-stage diagnostic narratives.
type Insights struct {
	Scraping              *ScrapingInsight   `json:"scraping,omitempty"`
	ContentAnalysis       *ContentInsight    `json:"content_analysis,omitempty"`
	SourceVerification    *NoteInsight       `json:"source_verification,omitempty"`
	InformationExtraction *ExtractionInsight `json:"information_extraction,omitempty"`
	FinancialRisk         *NoteInsight       `json:"financial_risk,omitempty"`
	RiskSynthesis         *SynthesisInsight  `json:"risk_synthesis,omitempty"`
	RiskSummary           string             `json:"risk_summary,omitempty"`
}

// ScrapingInsight describes how the posting was acquired
type ScrapingInsight struct {
	Method            string    `json:"method"`
	DescriptionLength int       `json:"description_length"`
	Status            string    `json:"status,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	LastUpdated       time.Time `json:"last_updated"`
}

// ContentInsight records the content stage's narrative
type ContentInsight struct {
	Note          string `json:"note,omitempty"`
	LLMSummary    string `json:"llm_summary,omitempty"`
	LLMConfidence int    `json:"llm_confidence,omitempty"`
}

// NoteInsight is a single diagnostic note
type NoteInsight struct {
	Note string `json:"note,omitempty"`
}

// ExtractionInsight keeps the raw LLM output used to build the structured profile
type ExtractionInsight struct {
	Note         string         `json:"note,omitempty"`
	RawLLMOutput map[string]any `json:"raw_llm_output,omitempty"`
}

// SynthesisInsight is the audit trail for verdict overrides
type SynthesisInsight struct {
	HeuristicVerdict Verdict `json:"heuristic_verdict,omitempty"`
	LLMVerdict       Verdict `json:"llm_verdict,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// ScoreOr dereferences a score, returning def when unset.
func ScoreOr(score *int, def int) int {
	if score == nil {
		return def
	}
	return *score
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

package research

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/prompts"
	"github.com/jonathan/job-verifier/internal/schemas"
	"github.com/jonathan/job-verifier/internal/types"
)

// Signals are the open-source findings the legitimacy score is computed from.
type Signals struct {
	Trusted     bool
	HasDomain   bool
	WebPresence int
	HRContacts  int
	Press       int
	TeamLinks   int
	Filings     bool
	Reviews     bool
	ScamHits    bool
}

// LegitimacyScore combines the signals into a 0-100 score.
func LegitimacyScore(s Signals) int {
	score := 20
	if s.Trusted {
		score = 35
	}
	if s.HasDomain {
		score += 20
	}
	score += min(15, 3*s.WebPresence)
	score += min(15, 3*s.HRContacts)
	score += min(10, 2*s.Press)
	score += min(10, 3*s.TeamLinks)
	if s.Filings {
		score += 10
	}
	if s.Reviews {
		score += 5
	}
	if s.ScamHits {
		score -= 25
	}
	return types.Clamp(score, 0, 100)
}

// assess asks the model to judge the gathered intelligence.
func (inv *Investigator) assess(ctx context.Context, intel *types.CompanyIntel) (map[string]any, bool) {
	if !inv.llmReady(ctx) {
		return nil, false
	}

	evidence, err := json.Marshal(map[string]any{
		"company_name":       intel.CompanyName,
		"company_domain":     intel.CompanyDomain,
		"inferred_domain":    intel.InferredDomain,
		"trusted_inference":  intel.TrustedInference,
		"web_presence_count": len(intel.WebPresence),
		"hr_contact_count":   len(intel.HRContacts),
		"press_mentions":     intel.PressMentions,
		"team_links":         intel.TeamLinks,
		"recent_filings":     intel.RecentFilings,
		"legitimacy_score":   intel.LegitimacyScore,
		"scam_reports":       intel.ScamReports,
		"domain_age":         intel.DomainAge,
	})
	if err != nil {
		return nil, false
	}

	obj, ok := inv.llm.StructuredChat(ctx, llm.ChatRequest{
		Prompt:       prompts.MustRender("research.json", "assess-company", map[string]string{"Evidence": string(evidence)}),
		SystemPrompt: prompts.MustGet("research.json", "assess-company-system"),
		MaxTokens:    250,
	})
	if !ok {
		zap.L().Debug("research: company assessment unavailable; keeping heuristic score")
		return nil, false
	}
	if err := schemas.Validate(schemas.CompanyAssessment, obj); err != nil {
		zap.L().Debug("research: company assessment malformed", zap.Error(err))
		return nil, false
	}
	return obj, true
}

// Package synthesis combines the flags raised by every stage into a risk score and verdict.
package synthesis

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/prompts"
	"github.com/jonathan/job-verifier/internal/types"
)

// StageName identifies the risk synthesis stage.
const StageName = "risk_synthesis"

// UnitPenalty is the risk contributed by one flag at weight 1.
const UnitPenalty = 15

// Weights are category weights in hundredths. Categories not listed weigh zero.
var Weights = map[types.Category]int{
	types.CategoryAcquisition:  10,
	types.CategoryContent:      80,
	types.CategoryVerification: 90,
	types.CategoryFinancial:    140,
	types.CategoryIntelligence: 60,
}

// trustedAcquisitionWeight replaces the acquisition weight on trusted domains.
const trustedAcquisitionWeight = 5

// Verdict thresholds.
const (
	fakeRisk            = 85
	suspiciousRisk      = 60
	fakeFinancialFlags  = 3
	pairFinancialFlags  = 2
	pairContentFlags    = 2
	sanityPreviewLimit  = 5
	summaryPreviewLimit = 3
)

// Default scores reported when a stage did not set one.
const (
	defaultContentScore      = 75
	defaultVerificationScore = 75
	defaultFinancialScore    = 100
)

// Synthesizer is the risk synthesis stage.
type Synthesizer struct {
	llm llm.Gateway
}

// NewSynthesizer creates the risk synthesis stage.
func NewSynthesizer(gateway llm.Gateway) *Synthesizer {
	return &Synthesizer{llm: gateway}
}

// Name implements the pipeline stage contract.
func (s *Synthesizer) Name() string {
	return StageName
}

// Run scores the flag ledger, derives the verdict and lets the model overrule a negative verdict.
func (s *Synthesizer) Run(ctx context.Context, jc *types.JobContext) error {
	trusted := jc.Meta.TrustedDomain
	incomplete := jc.Meta.ScrapingIncomplete

	counts := make(map[types.Category]int)
	for _, c := range jc.Flags.Categories() {
		counts[c] = jc.Flags.Count(c)
	}

	risk := RiskScore(counts, trusted)
	verdict := DeriveVerdict(risk, counts, trusted, incomplete)

	if verdict == types.VerdictFake || verdict == types.VerdictSuspicious {
		if override, ok := s.sanityCheck(ctx, jc, verdict, risk); ok && override != verdict {
			jc.Meta.Insights.RiskSynthesis = &types.SynthesisInsight{
				HeuristicVerdict: verdict,
				LLMVerdict:       override,
			}
			zap.L().Debug("synthesis: verdict overridden",
				zap.String("heuristic", string(verdict)),
				zap.String("llm", string(override)))
			verdict = override
		}
	}

	jc.Meta.RiskScore = risk
	jc.Meta.Confidence = types.Clamp(100-risk, 0, 100)
	jc.Meta.Verdict = verdict
	jc.Meta.FlagSummary = counts
	if jc.Meta.ContentScore == nil {
		jc.Meta.ContentScore = types.IntPtr(defaultContentScore)
	}
	if jc.Meta.VerificationScore == nil {
		jc.Meta.VerificationScore = types.IntPtr(defaultVerificationScore)
	}
	if jc.Meta.FinancialScore == nil {
		jc.Meta.FinancialScore = types.IntPtr(defaultFinancialScore)
	}

	if narrative, ok := s.narrative(ctx, jc, verdict, risk); ok {
		jc.Meta.Insights.RiskSummary = narrative
	}
	return nil
}

// RiskScore is the weighted flag total, rounded half to even and capped at 100.
func RiskScore(counts map[types.Category]int, trusted bool) int {
	total := 0
	for category, n := range counts {
		weight := Weights[category]
		if category == types.CategoryAcquisition && trusted {
			weight = trustedAcquisitionWeight
		}
		total += n * UnitPenalty * weight
	}
	return min(100, int(math.RoundToEven(float64(total)/100)))
}

// DeriveVerdict applies the verdict rules in order: incomplete data on a trusted site,
// then fake, then suspicious, otherwise legit.
func DeriveVerdict(risk int, counts map[types.Category]int, trusted, incomplete bool) types.Verdict {
	if trusted && incomplete {
		others := 0
		for category, n := range counts {
			if category != types.CategoryAcquisition {
				others += n
			}
		}
		if others == 0 {
			return types.VerdictIncompleteData
		}
	}

	financial := counts[types.CategoryFinancial]
	content := counts[types.CategoryContent]
	switch {
	case financial >= fakeFinancialFlags || risk >= fakeRisk:
		return types.VerdictFake
	case risk >= suspiciousRisk || (financial >= pairFinancialFlags && content >= pairContentFlags):
		return types.VerdictSuspicious
	default:
		return types.VerdictLegit
	}
}

// ParseVerdict reads a one-word model answer. Words are tried in the order legit, suspicious, fake.
func ParseVerdict(answer string) (types.Verdict, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, v := range []types.Verdict{types.VerdictLegit, types.VerdictSuspicious, types.VerdictFake} {
		if strings.Contains(answer, string(v)) {
			return v, true
		}
	}
	return "", false
}

// FlagDigest joins up to limit entries per non-empty category as "category: a; b" separated by " | ".
func FlagDigest(flags *types.Flags, limit int, empty string) string {
	var lines []string
	for _, c := range flags.Categories() {
		entries := flags.Get(c)
		if len(entries) == 0 {
			continue
		}
		if len(entries) > limit {
			entries = entries[:limit]
		}
		lines = append(lines, string(c)+": "+strings.Join(entries, "; "))
	}
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, " | ")
}

func (s *Synthesizer) llmReady(ctx context.Context) bool {
	return s.llm != nil && s.llm.Available(ctx)
}

func (s *Synthesizer) sanityCheck(ctx context.Context, jc *types.JobContext, verdict types.Verdict, risk int) (types.Verdict, bool) {
	if !s.llmReady(ctx) {
		return "", false
	}

	prompt := prompts.MustRender("synthesis.json", "sanity-check", map[string]string{
		"Title":        orUnknown(jc.Title),
		"Company":      orUnknown(jc.Company),
		"SourceDomain": orUnknown(jc.Meta.SourceDomain),
		"Verdict":      string(verdict),
		"RiskScore":    strconv.Itoa(risk),
		"Flags":        FlagDigest(jc.Flags, sanityPreviewLimit, "no flags"),
	})
	answer, ok := s.llm.Chat(ctx, llm.ChatRequest{
		Prompt:       prompt,
		SystemPrompt: prompts.MustGet("synthesis.json", "sanity-check-system"),
		Temperature:  0.1,
		MaxTokens:    50,
	})
	if !ok {
		return "", false
	}
	return ParseVerdict(answer)
}

func (s *Synthesizer) narrative(ctx context.Context, jc *types.JobContext, verdict types.Verdict, risk int) (string, bool) {
	if !s.llmReady(ctx) {
		return "", false
	}

	prompt := prompts.MustRender("synthesis.json", "risk-summary", map[string]string{
		"Verdict":   string(verdict),
		"RiskScore": strconv.Itoa(risk),
		"Flags":     FlagDigest(jc.Flags, summaryPreviewLimit, "no major flags"),
	})
	text, ok := s.llm.Chat(ctx, llm.ChatRequest{
		Prompt:       prompt,
		SystemPrompt: prompts.MustGet("synthesis.json", "risk-summary-system"),
		MaxTokens:    200,
	})
	text = strings.TrimSpace(text)
	return text, ok && text != ""
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

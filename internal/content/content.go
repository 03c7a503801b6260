// Package content scores the posting text for scam language, using the language model when
// one is available and a conservative phrase scan otherwise.
package content

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/prompts"
	"github.com/jonathan/job-verifier/internal/schemas"
	"github.com/jonathan/job-verifier/internal/types"
)

// StageName identifies the content analysis stage.
const StageName = "content_analysis"

// maxPromptChars bounds the description sent to the model.
const maxPromptChars = 4000

// ExtremeScamPhrases are unambiguous scam instructions.
var ExtremeScamPhrases = []string{
	"send money",
	"cash daily guaranteed",
	"pay upfront fee",
	"send gift card",
}

// CriticalFinancialFlags are payment demands no genuine employer makes.
var CriticalFinancialFlags = []string{
	"send bitcoin",
	"wire money upfront",
	"purchase gift card",
}

var (
	pipeSuffix = regexp.MustCompile(`\s+\|.*$`)
	dashSuffix = regexp.MustCompile(`\s+-\s+.*$`)
)

// Analyzer is the content analysis stage.
type Analyzer struct {
	llm llm.Gateway
}

// NewAnalyzer creates the content stage.
func NewAnalyzer(gateway llm.Gateway) *Analyzer {
	return &Analyzer{llm: gateway}
}

// Name implements the pipeline stage contract.
func (a *Analyzer) Name() string {
	return StageName
}

// Run sets the content and financial scores and records content flags.
func (a *Analyzer) Run(ctx context.Context, jc *types.JobContext) error {
	text := jc.TrimmedDescription
	jc.Meta.ContentTokenCount = len(strings.Fields(text))
	jc.Meta.JobRole = JobRole(jc.Title)

	if jc.Meta.ScrapingIncomplete {
		jc.Meta.Insights.ContentAnalysis = &types.ContentInsight{Note: "Content analysis skipped due to incomplete scrape"}
		jc.Meta.ContentScore = types.IntPtr(100)
		jc.Meta.FinancialScore = types.IntPtr(100)
		return nil
	}

	if strings.TrimSpace(text) == "" {
		jc.AddFlag(types.CategoryContent, "Job description missing or empty")
		jc.Meta.ContentScore = types.IntPtr(50)
		jc.Meta.FinancialScore = types.IntPtr(100)
		return nil
	}

	if review, ok := a.review(ctx, jc, text); ok {
		applyReview(jc, review)
		return nil
	}

	jc.Meta.Insights.ContentAnalysis = &types.ContentInsight{Note: "LLM unavailable; using basic heuristics"}
	if scanExtremePhrases(jc, strings.ToLower(text)) {
		jc.Meta.ContentScore = types.IntPtr(30)
		jc.Meta.FinancialScore = types.IntPtr(20)
	} else {
		jc.Meta.ContentScore = types.IntPtr(75)
		jc.Meta.FinancialScore = types.IntPtr(90)
	}
	return nil
}

// review asks the model for a content assessment. ok is false when the model is unavailable
// or its reply does not match the content analysis schema.
func (a *Analyzer) review(ctx context.Context, jc *types.JobContext, text string) (map[string]any, bool) {
	if a.llm == nil || !a.llm.Available(ctx) {
		return nil, false
	}

	prompt := prompts.MustRender("content.json", "content-analysis", map[string]string{
		"Company":      orUnknown(jc.Company),
		"SourceDomain": orUnknown(jc.Meta.SourceDomain),
		"Title":        orUnknown(jc.Title),
		"Description":  truncate(text, maxPromptChars),
	})
	obj, ok := a.llm.StructuredChat(ctx, llm.ChatRequest{
		Prompt:       prompt,
		SystemPrompt: prompts.MustGet("content.json", "content-analysis-system"),
		Temperature:  0.1,
		MaxTokens:    500,
	})
	if !ok {
		return nil, false
	}
	if err := schemas.Validate(schemas.ContentAnalysis, obj); err != nil {
		zap.L().Debug("content: discarding malformed review", zap.Error(err))
		return nil, false
	}
	return obj, true
}

func applyReview(jc *types.JobContext, review map[string]any) {
	jc.Meta.Insights.ContentAnalysis = &types.ContentInsight{
		LLMSummary:    llm.String(review, "summary"),
		LLMConfidence: llm.Int(review, "confidence", 50),
	}

	contentScore := types.Clamp(llm.Int(review, "content_score", 75), 0, 100)
	financialScore := types.Clamp(llm.Int(review, "financial_score", 100), 0, 100)
	jc.Meta.ContentScore = types.IntPtr(contentScore)
	jc.Meta.FinancialScore = types.IntPtr(financialScore)

	for _, flag := range llm.Strings(review, "risk_flags") {
		jc.AddFlag(types.CategoryContent, flag)
	}
	for _, flag := range llm.Strings(review, "pii_flags") {
		jc.AddFlag(types.CategoryFinancial, "Inappropriate data request: "+flag)
	}

	if contentScore < 60 || financialScore < 60 {
		scanExtremePhrases(jc, strings.ToLower(jc.TrimmedDescription))
	}
}

// scanExtremePhrases flags every extreme phrase in lower and reports whether any matched.
func scanExtremePhrases(jc *types.JobContext, lower string) bool {
	found := false
	for _, phrase := range ExtremeScamPhrases {
		if strings.Contains(lower, phrase) {
			jc.AddFlag(types.CategoryContent, fmt.Sprintf("Critical scam phrase: %s", phrase))
			found = true
		}
	}
	for _, phrase := range CriticalFinancialFlags {
		if strings.Contains(lower, phrase) {
			jc.AddFlag(types.CategoryFinancial, fmt.Sprintf("Critical financial scam: %s", phrase))
			found = true
		}
	}
	return found
}

// JobRole strips board suffixes such as " | Acme" or " - Remote" from a title.
func JobRole(title string) string {
	role := pipeSuffix.ReplaceAllString(title, "")
	role = dashSuffix.ReplaceAllString(role, "")
	role = strings.TrimSpace(role)
	if role == "" {
		return "Unknown Role"
	}
	return role
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

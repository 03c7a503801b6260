// Package parsing normalizes a job posting into a structured profile using LLM extraction.
package parsing

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/prompts"
	"github.com/jonathan/job-verifier/internal/schemas"
	"github.com/jonathan/job-verifier/internal/types"
)

// StageName identifies the information extraction stage.
const StageName = "information_extraction"

// Extractor is the information extraction stage.
type Extractor struct {
	llm llm.Gateway
}

// NewExtractor creates the extraction stage.
func NewExtractor(gateway llm.Gateway) *Extractor {
	return &Extractor{llm: gateway}
}

// Name implements the pipeline stage contract.
func (e *Extractor) Name() string {
	return StageName
}

// Run stores the structured profile in meta and adopts model-supplied title and company.
func (e *Extractor) Run(ctx context.Context, jc *types.JobContext) error {
	profile := baseProfile(jc)
	insight := &types.ExtractionInsight{}
	jc.Meta.Insights.InformationExtraction = insight

	if jc.Meta.ScrapingIncomplete {
		insight.Note = "Extraction skipped due to incomplete scrape"
		jc.Meta.StructuredProfile = profile
		return nil
	}

	raw, err := e.extract(ctx, jc)
	if err != nil {
		zap.L().Debug("parsing: using scraped fields only", zap.String("url", jc.URL), zap.Error(err))
		insight.Note = fallbackNote(err)
	} else {
		insight.RawLLMOutput = raw
		mergeProfile(profile, raw)
	}

	if profile.JobTitle != "" {
		jc.Title = profile.JobTitle
	}
	if profile.Company != "" {
		jc.Company = profile.Company
	}
	jc.Meta.StructuredProfile = profile
	return nil
}

// extract sends the posting context to the model and returns its validated reply.
func (e *Extractor) extract(ctx context.Context, jc *types.JobContext) (map[string]any, error) {
	if e.llm == nil || !e.llm.Available(ctx) {
		return nil, eris.Wrap(ErrNoModel, "language model unavailable")
	}

	payload, err := json.Marshal(map[string]any{
		"url":             jc.URL,
		"current_title":   jc.Title,
		"current_company": jc.Company,
		"team_hint":       jc.Meta.JobRole,
		"verified_domain": jc.Meta.SourceDomain,
		"description":     jc.Description,
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode posting")
	}

	raw, ok := e.llm.StructuredChat(ctx, llm.ChatRequest{
		Prompt:       llm.BuildExtractionPrompt(llm.StructuredProfileSchema(), string(payload)),
		SystemPrompt: prompts.MustGet("extraction.json", "extract-structured-profile"),
		Temperature:  0.1,
		MaxTokens:    600,
	})
	if !ok {
		return nil, ErrNoModel
	}
	if err := schemas.Validate(schemas.StructuredProfile, raw); err != nil {
		return nil, eris.Wrap(ErrMalformedReply, err.Error())
	}
	return raw, nil
}

func baseProfile(jc *types.JobContext) *types.StructuredProfile {
	p := &types.StructuredProfile{
		URL:            jc.URL,
		JobTitle:       jc.Title,
		Company:        jc.Company,
		Skills:         []string{},
		VerifiedDomain: jc.Meta.SourceDomain,
	}
	if jc.Meta.ScrapedAt != nil {
		p.ScrapedAt = jc.Meta.ScrapedAt.Format(time.RFC3339)
	}
	return p
}

// mergeProfile lets every non-empty model field override the scraped value.
func mergeProfile(p *types.StructuredProfile, raw map[string]any) {
	for key, dst := range map[string]*string{
		"url":                 &p.URL,
		"job_title":           &p.JobTitle,
		"company":             &p.Company,
		"team":                &p.Team,
		"location":            &p.Location,
		"experience_required": &p.ExperienceRequired,
		"education_required":  &p.EducationRequired,
		"job_type":            &p.JobType,
		"verified_domain":     &p.VerifiedDomain,
	} {
		if v := llm.String(raw, key); v != "" {
			*dst = v
		}
	}

	if _, isList := raw["skills"].([]any); isList {
		p.Skills = NormalizeSkills(llm.Strings(raw, "skills"))
	}

	if score, ok := llm.Number(raw, "authenticity_score"); ok && !math.IsNaN(score) {
		p.AuthenticityScore = max(0, min(1, score))
	}
}

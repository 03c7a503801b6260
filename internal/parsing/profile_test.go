package parsing

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-verifier/internal/llm"
	"github.com/jonathan/job-verifier/internal/llm/llmtest"
	"github.com/jonathan/job-verifier/internal/types"
)

func newJob() *types.JobContext {
	scraped := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	jc := types.NewJobContext("https://careers.acme.com/jobs/7")
	jc.Title = "Data Analyst | Acme"
	jc.Company = "Acme"
	jc.Description = "Analyze revenue with SQL and Excel."
	jc.Meta.JobRole = "Data Analyst"
	jc.Meta.SourceDomain = "careers.acme.com"
	jc.Meta.ScrapedAt = &scraped
	return jc
}

func TestExtractor_NoModelKeepsScrapedFields(t *testing.T) {
	jc := newJob()

	require.NoError(t, NewExtractor(llmtest.Down()).Run(context.Background(), jc))

	p := jc.Meta.StructuredProfile
	require.NotNil(t, p)
	assert.Equal(t, "Data Analyst | Acme", p.JobTitle)
	assert.Equal(t, "careers.acme.com", p.VerifiedDomain)
	assert.Equal(t, "2026-01-02T03:04:05Z", p.ScrapedAt)
	assert.Empty(t, p.Skills)
	assert.Zero(t, p.AuthenticityScore)
	assert.Equal(t, "LLM unavailable; profile built from scraped fields", jc.Meta.Insights.InformationExtraction.Note)
}

func TestExtractor_MergesModelOutput(t *testing.T) {
	var sent map[string]any
	gw := &llmtest.Gateway{
		Up: true,
		StructFunc: func(req llm.ChatRequest) (map[string]any, bool) {
			sent = promptPayload(t, req.Prompt)
			return map[string]any{
				"job_title":          "Senior Data Analyst",
				"company":            nil,
				"team":               "Revenue Operations",
				"location":           "Austin, TX",
				"skills":             []any{"sql", "ms excel", 42, "SQL"},
				"job_type":           "full-time",
				"authenticity_score": 1.7,
			}, true
		},
	}
	jc := newJob()

	require.NoError(t, NewExtractor(gw).Run(context.Background(), jc))

	p := jc.Meta.StructuredProfile
	assert.Equal(t, "Senior Data Analyst", p.JobTitle)
	assert.Equal(t, "Acme", p.Company, "null fields keep the scraped value")
	assert.Equal(t, "Revenue Operations", p.Team)
	assert.Equal(t, "Austin, TX", p.Location)
	assert.Equal(t, []string{"SQL", "Excel"}, p.Skills)
	assert.Equal(t, 1.0, p.AuthenticityScore)
	assert.Equal(t, "Senior Data Analyst", jc.Title)
	assert.NotNil(t, jc.Meta.Insights.InformationExtraction.RawLLMOutput)

	assert.Equal(t, "Data Analyst", sent["team_hint"])
	assert.Equal(t, "careers.acme.com", sent["verified_domain"])
	assert.Equal(t, "Data Analyst | Acme", sent["current_title"])

	calls := gw.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 600, calls[0].MaxTokens)
	assert.Contains(t, calls[0].SystemPrompt, "authenticity_score (0-1)")
}

func TestExtractor_SchemaMismatchIgnored(t *testing.T) {
	gw := &llmtest.Gateway{
		Up: true,
		StructFunc: func(llm.ChatRequest) (map[string]any, bool) {
			return map[string]any{"skills": "SQL, Excel"}, true
		},
	}
	jc := newJob()

	require.NoError(t, NewExtractor(gw).Run(context.Background(), jc))

	assert.Empty(t, jc.Meta.StructuredProfile.Skills)
	assert.Nil(t, jc.Meta.Insights.InformationExtraction.RawLLMOutput)
	assert.Equal(t, "LLM reply malformed; profile built from scraped fields", jc.Meta.Insights.InformationExtraction.Note)
}

func TestExtractor_IncompleteScrapeSkipsModel(t *testing.T) {
	gw := &llmtest.Gateway{Up: true}
	jc := newJob()
	jc.Meta.ScrapingIncomplete = true

	require.NoError(t, NewExtractor(gw).Run(context.Background(), jc))

	assert.Empty(t, gw.Calls())
	assert.Equal(t, "Acme", jc.Meta.StructuredProfile.Company)
	assert.Equal(t, "Extraction skipped due to incomplete scrape", jc.Meta.Insights.InformationExtraction.Note)
}

// promptPayload decodes the posting JSON embedded in an extraction prompt.
func promptPayload(t *testing.T, prompt string) map[string]any {
	t.Helper()
	const open, end = "Input:\n\"\"\"\n", "\n\"\"\"\n"
	start := strings.Index(prompt, open)
	require.GreaterOrEqual(t, start, 0)
	body := prompt[start+len(open):]
	body = body[:strings.Index(body, end)]

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	return payload
}

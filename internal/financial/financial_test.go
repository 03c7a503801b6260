package financial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-verifier/internal/types"
)

func TestAssessor_Name(t *testing.T) {
	assert.Equal(t, "financial_risk", NewAssessor().Name())
}

func TestAssessor_IncompleteScrapeIsNeutral(t *testing.T) {
	jc := types.NewJobContext("https://www.amazon.jobs/en/jobs/1")
	jc.Description = "Pay the training fee by wire transfer"
	jc.Meta.ScrapingIncomplete = true

	require.NoError(t, NewAssessor().Run(context.Background(), jc))

	assert.Zero(t, jc.Flags.Count(types.CategoryFinancial))
	assert.Equal(t, 100, *jc.Meta.FinancialScore)
	assert.Equal(t, "Financial analysis skipped due to incomplete scrape", jc.Meta.Insights.FinancialRisk.Note)
}

func TestAssessor_IncompleteScrapeKeepsEarlierScore(t *testing.T) {
	jc := types.NewJobContext("https://www.amazon.jobs/en/jobs/1")
	jc.Meta.ScrapingIncomplete = true
	jc.Meta.FinancialScore = types.IntPtr(100)

	require.NoError(t, NewAssessor().Run(context.Background(), jc))
	assert.Equal(t, 100, *jc.Meta.FinancialScore)
}

func TestAssessor_RedFlagsAndSensitiveInfo(t *testing.T) {
	jc := types.NewJobContext("https://quickcash.xyz/apply")
	jc.Description = "Send the Application Fee by wire transfer and include your SSN and bank account details."

	require.NoError(t, NewAssessor().Run(context.Background(), jc))

	assert.Equal(t, []string{
		"Financial red flag: wire transfer",
		"Financial red flag: application fee",
		"Requests sensitive information: ssn",
		"Requests sensitive information: bank account",
	}, jc.Flags.Get(types.CategoryFinancial))
	assert.Equal(t, 28, *jc.Meta.FinancialScore)
}

func TestAssessor_ScoreCountsEarlierFinancialFlags(t *testing.T) {
	jc := types.NewJobContext("https://quickcash.xyz/apply")
	jc.Description = "A normal description."
	jc.AddFlag(types.CategoryFinancial, "Inappropriate data request: passport scan")

	require.NoError(t, NewAssessor().Run(context.Background(), jc))
	assert.Equal(t, 82, *jc.Meta.FinancialScore)
}

func TestAssessor_ScoreFloorsAtZero(t *testing.T) {
	jc := types.NewJobContext("https://quickcash.xyz/apply")
	jc.Description = "wire transfer gift card crypto bitcoin application fee training fee processing fee deposit"

	require.NoError(t, NewAssessor().Run(context.Background(), jc))
	assert.Equal(t, 8, jc.Flags.Count(types.CategoryFinancial))
	assert.Zero(t, *jc.Meta.FinancialScore)
}

func TestAssessor_CleanPosting(t *testing.T) {
	jc := types.NewJobContext("https://careers.acmeanvils.com/jobs/1")
	jc.Description = "Forge anvils with our friendly team. Benefits include health insurance."
	jc.SalaryMentions = []string{"$65,000"}
	jc.Meta.JobRole = "Welder"

	require.NoError(t, NewAssessor().Run(context.Background(), jc))

	assert.Zero(t, jc.Flags.Count(types.CategoryFinancial))
	assert.Equal(t, 100, *jc.Meta.FinancialScore)
}

func TestSalarySignals(t *testing.T) {
	tests := []struct {
		name        string
		mentions    []string
		role        string
		description string
		want        []string
	}{
		{"no mentions", nil, "Junior Analyst", "full time", nil},
		{"no digits", []string{"competitive salary"}, "Junior Analyst", "full time", nil},
		{"high for junior role", []string{"$250,000"}, "Junior Analyst", "", []string{"Salary claim far above typical range for role"}},
		{"high for senior role", []string{"$250,000"}, "Principal Engineer", "", nil},
		{"high without role", []string{"$250,000"}, "", "", nil},
		{"low for full time", []string{"$15 per hour"}, "Welder", "This is a Full Time position", []string{"Salary claim well below typical full-time compensation"}},
		{"low for part time", []string{"$15 per hour"}, "Welder", "Part time shifts", nil},
		{"averaged", []string{"$400,000", "$100,000"}, "Entry Level Assistant", "", []string{"Salary claim far above typical range for role"}},
		{"averaged below threshold", []string{"$300,000", "$50,000"}, "Entry Level Assistant", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SalarySignals(tt.mentions, tt.role, tt.description))
		})
	}
}

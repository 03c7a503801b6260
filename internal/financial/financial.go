// Package financial flags payment demands, sensitive information requests and implausible salary claims.
package financial

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/types"
)

// StageName identifies the financial risk stage.
const StageName = "financial_risk"

// flagPenalty is deducted from the financial score per financial flag.
const flagPenalty = 18

// RedFlags are payment-related phrases.
var RedFlags = []string{
	"wire transfer",
	"gift card",
	"crypto",
	"bitcoin",
	"application fee",
	"training fee",
	"processing fee",
	"deposit",
}

// SensitiveInfoFlags are personal data requests no application needs.
var SensitiveInfoFlags = []string{"ssn", "social security", "passport", "bank account", "routing number"}

var juniorRoleWords = []string{"assistant", "entry", "junior"}

// Salary bounds used for plausibility checks.
const (
	implausiblyHighSalary = 200000
	implausiblyLowSalary  = 20000
)

// Assessor is the financial risk stage.
type Assessor struct{}

// NewAssessor creates the financial risk stage.
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Name implements the pipeline stage contract.
func (a *Assessor) Name() string {
	return StageName
}

// Run records financial flags and recomputes the financial score from every financial flag present.
func (a *Assessor) Run(_ context.Context, jc *types.JobContext) error {
	if jc.Meta.ScrapingIncomplete {
		jc.Meta.Insights.FinancialRisk = &types.NoteInsight{Note: "Financial analysis skipped due to incomplete scrape"}
		if jc.Meta.FinancialScore == nil {
			jc.Meta.FinancialScore = types.IntPtr(100)
		}
		return nil
	}

	text := strings.ToLower(jc.Description)
	for _, phrase := range RedFlags {
		if strings.Contains(text, phrase) {
			jc.AddFlag(types.CategoryFinancial, "Financial red flag: "+phrase)
		}
	}
	for _, phrase := range SensitiveInfoFlags {
		if strings.Contains(text, phrase) {
			jc.AddFlag(types.CategoryFinancial, "Requests sensitive information: "+phrase)
		}
	}
	for _, signal := range SalarySignals(jc.SalaryMentions, jc.Meta.JobRole, jc.Description) {
		jc.AddFlag(types.CategoryFinancial, signal)
	}

	score := max(0, 100-flagPenalty*jc.Flags.Count(types.CategoryFinancial))
	jc.Meta.FinancialScore = types.IntPtr(score)
	zap.L().Debug("financial: assessed", zap.Int("score", score), zap.Int("flags", jc.Flags.Count(types.CategoryFinancial)))
	return nil
}

// SalarySignals compares the average of the salary mentions against the role and employment type.
// Each mention is read as the integer formed by its digits; mentions without digits are ignored.
func SalarySignals(mentions []string, role, description string) []string {
	var sum float64
	n := 0
	for _, m := range mentions {
		v, ok := digitsValue(m)
		if !ok {
			continue
		}
		sum += float64(v)
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)

	var signals []string
	role = strings.ToLower(role)
	if role != "" && avg > implausiblyHighSalary && containsAny(role, juniorRoleWords) {
		signals = append(signals, "Salary claim far above typical range for role")
	}
	if avg < implausiblyLowSalary && strings.Contains(strings.ToLower(description), "full time") {
		signals = append(signals, "Salary claim well below typical full-time compensation")
	}
	return signals
}

func digitsValue(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

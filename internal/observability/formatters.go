// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-verifier/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProgress outputs a one-line stage progress message.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(step, message string) {
	fmt.Fprintf(p.out, "[%s] %s\n", step, message)
}

// PrintResult outputs the verdict, scores and every flag raised.
func (p *Printer) PrintResult(res *types.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL:        %s\n", res.Source.URL))
	if res.Source.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:      %s\n", res.Source.Title))
	}
	if res.Source.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:    %s\n", res.Source.Company))
	}
	sb.WriteString(fmt.Sprintf("Verdict:    %s\n", strings.ToUpper(string(res.Verdict))))
	if res.Verdict == types.VerdictError {
		sb.WriteString(fmt.Sprintf("Reason:     %s\n", res.Reason))
	} else {
		sb.WriteString(fmt.Sprintf("Risk:       %d/100\n", res.RiskScore))
		sb.WriteString(fmt.Sprintf("Confidence: %d/100\n", res.Confidence))
	}

	if res.Flags != nil && res.Flags.Total() > 0 {
		sb.WriteString("\n")
		for _, category := range res.Flags.Categories() {
			entries := res.Flags.Get(category)
			if len(entries) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("%s (%d):\n", category, len(entries)))
			for _, e := range entries {
				sb.WriteString(fmt.Sprintf("  • %s\n", e))
			}
		}
	}

	if res.Meta != nil && res.Meta.Insights.RiskSynthesis != nil && res.Meta.Insights.RiskSynthesis.HeuristicVerdict != "" {
		sb.WriteString(fmt.Sprintf("\nOverridden heuristic verdict: %s\n", res.Meta.Insights.RiskSynthesis.HeuristicVerdict))
	}
	if res.Recommendation != "" {
		sb.WriteString("\n" + res.Recommendation + "\n")
	}

	p.printBox("VERIFICATION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompanyIntel outputs the open-source intelligence gathered about the employer.
func (p *Printer) PrintCompanyIntel(intel *types.CompanyIntel) {
	if intel == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:    %s\n", orDash(intel.CompanyName)))
	sb.WriteString(fmt.Sprintf("Domain:     %s\n", orDash(intel.CompanyDomain)))
	if intel.DomainAge != "" {
		sb.WriteString(fmt.Sprintf("Domain age: %s\n", intel.DomainAge))
	}
	sb.WriteString(fmt.Sprintf("Legitimacy: %d/100\n", intel.LegitimacyScore))
	sb.WriteString(fmt.Sprintf("Web:        %d sources (%s)\n", len(intel.WebPresence), orDash(intel.WebPresenceStatus)))
	sb.WriteString(fmt.Sprintf("Press:      %d mentions\n", len(intel.PressMentions)))
	sb.WriteString(fmt.Sprintf("Filings:    %t\n", intel.RecentFilings))

	if len(intel.HRContacts) > 0 {
		sb.WriteString("\nHR contacts:\n")
		count := min(len(intel.HRContacts), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := intel.HRContacts[i]
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", c.Name, c.Role))
		}
	}
	if len(intel.ScamReports) > 0 {
		sb.WriteString(fmt.Sprintf("\nScam reports: %d\n", len(intel.ScamReports)))
	}
	if intel.LLMSummary != "" {
		sb.WriteString("\n" + intel.LLMSummary + "\n")
	}

	p.printBox("COMPANY INTELLIGENCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStructuredProfile outputs the normalized posting profile.
func (p *Printer) PrintStructuredProfile(profile *types.StructuredProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:       %s\n", orDash(profile.JobTitle)))
	sb.WriteString(fmt.Sprintf("Company:    %s\n", orDash(profile.Company)))
	if profile.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:   %s\n", profile.Location))
	}
	if profile.JobType != "" {
		sb.WriteString(fmt.Sprintf("Type:       %s\n", profile.JobType))
	}
	sb.WriteString(fmt.Sprintf("Authentic:  %.2f\n", profile.AuthenticityScore))

	if len(profile.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(profile.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.Skills[i]))
		}
		if len(profile.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.Skills)-maxItemsToShow))
		}
	}

	p.printBox("STRUCTURED PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package ingestion

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// messagingChannels are consumer apps scammers move conversations to.
var messagingChannels = []string{"telegram", "whatsapp", "signal", "facebook", "instagram"}

var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s?(?:per|/|-)?\s?(?:hour|hr|week|month|year|annum|annually)?`),
	regexp.MustCompile(`(?i)(?:£|€)\s?\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s?(?:per|/|-)?\s?(?:hour|hr|week|month|year|annum|annually)?`),
	regexp.MustCompile(`(?i)\d{1,3}(?:,\d{3})+\s?(?:to|-)\s?\d{1,3}(?:,\d{3})+`),
	regexp.MustCompile(`(?i)(?:salary|pay|compensation):\s?\$?\d{1,3}(?:,\d{3})*`),
}

// ExtractEmails returns the lowercased, deduplicated addresses in text in order of appearance.
func ExtractEmails(text string) []string {
	return dedupe(emailPattern.FindAllString(text, -1), strings.ToLower)
}

// ExtractChannels returns the messaging apps mentioned in text.
func ExtractChannels(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, ch := range messagingChannels {
		if strings.Contains(lower, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// ExtractSalaries returns trimmed, deduplicated salary mentions, pattern by pattern.
func ExtractSalaries(text string) []string {
	var matches []string
	for _, re := range salaryPatterns {
		matches = append(matches, re.FindAllString(text, -1)...)
	}
	return dedupe(matches, strings.TrimSpace)
}

func dedupe(values []string, normalize func(string) string) []string {
	out := []string{}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = normalize(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

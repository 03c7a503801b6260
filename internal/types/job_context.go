package types

import "strings"

// TokenLimit is the number of whitespace-separated tokens kept in a trimmed description.
const TokenLimit = 200

// JobContext is the mutable record threaded through every pipeline stage for one request.
// A JobContext must not be shared between requests.
type JobContext struct {
	URL            string `json:"url"`
	RawPageContent string `json:"-"`

	Title              string   `json:"title,omitempty"`
	Company            string   `json:"company,omitempty"`
	Description        string   `json:"description,omitempty"`
	TrimmedDescription string   `json:"trimmed_description,omitempty"`
	ContactEmails      []string `json:"contact_emails"`
	ContactChannels    []string `json:"contact_channels"`
	SalaryMentions     []string `json:"salary_mentions"`

	Meta  Meta   `json:"meta"`
	Flags *Flags `json:"flags"`
}

// NewJobContext creates a context holding only the URL.
func NewJobContext(url string) *JobContext {
	return &JobContext{
		URL:   url,
		Flags: NewFlags(),
	}
}

// AddFlag records a flag message; repeated messages are ignored.
func (c *JobContext) AddFlag(category Category, message string) {
	c.Flags.Add(category, message)
}

// TrimDescription keeps the first TokenLimit whitespace tokens of description joined by single spaces.
// Applying it twice yields the same result as applying it once.
func TrimDescription(description string) string {
	tokens := strings.Fields(description)
	if len(tokens) > TokenLimit {
		tokens = tokens[:TokenLimit]
	}
	return strings.Join(tokens, " ")
}

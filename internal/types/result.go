package types

import (
	"time"

	"github.com/google/uuid"
)

// Verdict is the categorical outcome of a verification run
type Verdict string

// Verdicts
const (
	VerdictLegit          Verdict = "legit"
	VerdictSuspicious     Verdict = "suspicious"
	VerdictFake           Verdict = "fake"
	VerdictIncompleteData Verdict = "incomplete_data"
	VerdictError          Verdict = "error"
)

// Valid reports whether v is one of the known verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictLegit, VerdictSuspicious, VerdictFake, VerdictIncompleteData, VerdictError:
		return true
	}
	return false
}

// Source identifies the posting a result was produced for
type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}

// Result is the read-only projection of a job context after the pipeline finishes
type Result struct {
	ID             uuid.UUID `json:"id"`
	Verdict        Verdict   `json:"verdict"`
	RiskScore      int       `json:"risk_score"`
	Confidence     int       `json:"confidence"`
	Flags          *Flags    `json:"flags"`
	Meta           *Meta     `json:"meta,omitempty"`
	Source         Source    `json:"source"`
	Recommendation string    `json:"recommendation,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	DurationMS     int64     `json:"duration_ms"`
}

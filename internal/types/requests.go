package types

import (
	"github.com/go-playground/validator/v10"
)

// VerifyRequest asks for a posting URL to be fetched and verified.
type VerifyRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

// Posting is a job posting that has already been scraped by the caller.
type Posting struct {
	URL             string   `json:"url" validate:"required,http_url"`
	Title           string   `json:"title" validate:"required"`
	Company         string   `json:"company"`
	Description     string   `json:"description" validate:"required"`
	ContactEmails   []string `json:"contact_emails,omitempty" validate:"omitempty,dive,email"`
	ContactChannels []string `json:"contact_channels,omitempty"`
	SalaryMentions  []string `json:"salary_mentions,omitempty"`
}

// Validate validates the VerifyRequest using the validator.
func (r *VerifyRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the Posting using the validator.
func (p *Posting) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

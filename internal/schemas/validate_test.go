package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ContentAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		doc     map[string]any
		wantErr bool
	}{
		{
			name: "complete reply",
			doc: map[string]any{
				"content_score":   80.0,
				"financial_score": 95.0,
				"risk_flags":      []any{},
				"pii_flags":       []any{"asks for SSN"},
				"summary":         "Looks like a normal posting",
				"confidence":      70.0,
			},
		},
		{
			name: "null arrays allowed",
			doc: map[string]any{
				"content_score":   80.0,
				"financial_score": 95.0,
				"risk_flags":      nil,
			},
		},
		{
			name:    "missing scores",
			doc:     map[string]any{"summary": "no scores"},
			wantErr: true,
		},
		{
			name: "score as string",
			doc: map[string]any{
				"content_score":   "high",
				"financial_score": 95.0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(ContentAnalysis, tt.doc)
			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.NotEmpty(t, vErr.Errors)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_ContactRefinement(t *testing.T) {
	ok := map[string]any{
		"contacts": []any{
			map[string]any{"name": "jobs@acme.com", "role": "Recruiting", "profile": "https://acme.com/contact"},
		},
	}
	assert.NoError(t, Validate(ContactRefinement, ok))

	bad := map[string]any{"contacts": "jobs@acme.com"}
	assert.Error(t, Validate(ContactRefinement, bad))
}

func TestValidate_CompanyAssessmentConfidenceRange(t *testing.T) {
	assert.NoError(t, Validate(CompanyAssessment, map[string]any{"summary": "ok", "alerts": []any{}, "confidence": 55.0}))
	assert.Error(t, Validate(CompanyAssessment, map[string]any{"confidence": 140.0}))
}

func TestValidateBytes_Posting(t *testing.T) {
	valid := []byte(`{
		"url": "https://careers.acme.com/jobs/1",
		"title": "Backend Engineer",
		"company": "Acme",
		"description": "Build services in Go.",
		"contact_emails": ["jobs@acme.com"]
	}`)
	assert.NoError(t, ValidateBytes(Posting, valid))

	missingTitle := []byte(`{"url": "https://x.test", "description": "text"}`)
	err := ValidateBytes(Posting, missingTitle)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "title")

	unknownField := []byte(`{"url": "https://x.test", "title": "t", "description": "d", "salary": 10}`)
	assert.Error(t, ValidateBytes(Posting, unknownField))

	malformed := []byte(`{"url": `)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(ValidateBytes(Posting, malformed), &loadErr))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", map[string]any{})
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Path)
	assert.NotNil(t, loadErr.Unwrap())
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "content_score", Message: "is required"},
			{Field: "confidence", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. content_score")
	assert.Contains(t, errorMsg, "2. confidence")
}

// Package schemas provides JSON Schema validation for model replies and posting documents.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	schemafiles "github.com/jonathan/job-verifier/schemas"
)

// Embedded schema names
const (
	ContentAnalysis   = "content_analysis.schema.json"
	StructuredProfile = "structured_profile.schema.json"
	CompanyAssessment = "company_assessment.schema.json"
	ContactRefinement = "contact_refinement.schema.json"
	Posting           = "posting.schema.json"
)

// FieldError is one schema violation. Field is a dotted path, "(root)" for the document itself.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError means validation never ran: the schema is missing or broken,
// or the document could not be decoded.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	msg := "failed to load schema " + e.Path + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

type compiledSchema func() (*gojsonschema.Schema, error)

// cache holds one compiledSchema per embedded file name.
var cache sync.Map

func load(name string) (*gojsonschema.Schema, error) {
	c, _ := cache.LoadOrStore(name, compiledSchema(sync.OnceValues(func() (*gojsonschema.Schema, error) {
		data, err := schemafiles.FS.ReadFile(name)
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "schema not embedded", Cause: err}
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
		}
		return s, nil
	})))
	return c.(compiledSchema)()
}

func validate(name string, doc gojsonschema.JSONLoader, decodeFailure string) error {
	s, err := load(name)
	if err != nil {
		return err
	}
	result, err := s.Validate(doc)
	if err != nil {
		return &SchemaLoadError{Path: name, Message: decodeFailure, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// Validate checks a decoded Go value (map, struct, slice) against a named embedded schema.
func Validate(name string, doc any) error {
	return validate(name, gojsonschema.NewGoLoader(doc), "document could not be loaded")
}

// ValidateBytes checks raw JSON against a named embedded schema.
func ValidateBytes(name string, data []byte) error {
	return validate(name, gojsonschema.NewBytesLoader(data), "document is not valid JSON")
}

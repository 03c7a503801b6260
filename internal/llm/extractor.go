// Package llm - extractor.go provides schema-driven prompts for structured LLM output.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the JSON shape an LLM is asked to return for a task.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "StructuredProfile")
	Description string        // Preamble describing the task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[\"string\"]", "number"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Use only facts present in the input. If a field is unknown, set it to null (or [] for arrays).\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// StructuredProfileSchema returns the schema for normalizing a job posting into a profile.
func StructuredProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "StructuredProfile",
		Description: "You extract structured information from job postings. Use the provided context.",
		Fields: []SchemaField{
			{Name: "url", Type: "\"string\"", Required: true},
			{Name: "job_title", Type: "\"string\"", Required: true},
			{Name: "company", Type: "\"string\"", Required: true},
			{Name: "team", Type: "\"string\"", Description: "Team or organization within the company"},
			{Name: "location", Type: "\"string\""},
			{Name: "experience_required", Type: "\"string\"", Description: "e.g. '3+ years backend development'"},
			{Name: "education_required", Type: "\"string\""},
			{Name: "skills", Type: "[\"string\"]", Required: true},
			{Name: "job_type", Type: "\"string\"", Description: "full-time, part-time, contract, internship"},
			{Name: "verified_domain", Type: "\"string\""},
			{Name: "authenticity_score", Type: "number", Description: "0-1, how genuine the posting appears", Required: true},
		},
	}
}

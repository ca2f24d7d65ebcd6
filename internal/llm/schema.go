// Package llm - schema.go validates model output against JSON Schemas
// before it is trusted by a provider.
package llm

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// GhostSignalSchema is the required shape of the semantic evaluator's
// model response. Any response that does not validate is treated as
// unavailable, never as a guess.
const GhostSignalSchema = `{
	"type": "object",
	"required": ["ghostProbability", "confidence"],
	"properties": {
		"ghostProbability": {"type": "number", "minimum": 0, "maximum": 1},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"riskFactors": {"type": "array", "items": {"type": "string"}},
		"positiveFactors": {"type": "array", "items": {"type": "string"}}
	}
}`

// JobExtractionSchema is the required shape of the ingestion extractor's
// model response.
const JobExtractionSchema = `{
	"type": "object",
	"required": ["title", "company"],
	"properties": {
		"title": {"type": "string"},
		"company": {"type": "string"},
		"location": {"type": "string"},
		"description": {"type": "string"},
		"remote": {"type": "boolean"}
	}
}`

// ValidateJSON checks a JSON document against a schema and returns a
// descriptive error listing every violated field.
func ValidateJSON(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var messages []string
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}
		return fmt.Errorf("response does not match schema: %s", strings.Join(messages, "; "))
	}

	return nil
}

// internal/nlu/parse.go
package nlu

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"crm-concierge/internal/models"
)

// resultSchema is the contract the model's JSON must meet before any field
// of it is trusted.
var resultSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"intent"},
	"properties": map[string]interface{}{
		"intent": map[string]interface{}{"type": "string"},
		"entities": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
		"response_language":    map[string]interface{}{"type": "string"},
		"needs_data":           map[string]interface{}{"type": "boolean"},
		"missing_params":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"clarification_needed": map[string]interface{}{"type": "boolean"},
		"friendly_message":     map[string]interface{}{"type": "string"},
	},
}

// stripFences removes a surrounding markdown code fence, which the model
// emits despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseModelOutput validates and decodes the model's raw response into a
// ParseResult. Unsupported intents collapse to general_help rather than
// erroring; a malformed document is an error and the caller falls back.
func ParseModelOutput(raw string) (*ParseResult, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	schemaLoader := gojsonschema.NewGoLoader(resultSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate model response: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("model response failed validation: %v", errs)
	}

	var parsed ParseResult
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	if models.ParseIntent(string(parsed.Intent)) == models.IntentUnknown && parsed.Intent != models.IntentUnknown {
		// Hallucinated intent tags collapse to general help.
		parsed.Intent = models.IntentGeneralHelp
		parsed.NeedsData = false
	}

	entities := make(map[string]string, len(parsed.Entities))
	for k, v := range parsed.Entities {
		if strings.TrimSpace(v) != "" {
			entities[k] = strings.TrimSpace(v)
		}
	}
	parsed.Entities = entities

	params := parsed.MissingParams[:0]
	for _, p := range parsed.MissingParams {
		if strings.TrimSpace(p) != "" {
			params = append(params, p)
		}
	}
	parsed.MissingParams = params

	return &parsed, nil
}

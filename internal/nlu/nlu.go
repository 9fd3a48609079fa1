// internal/nlu/nlu.go

// Package nlu covers both sides of the language-model boundary: turning free
// text into a structured intent, and turning query results back into a
// human summary. Understanding degrades to a keyword fallback instead of
// failing; summaries are optional and their absence is never an error.
package nlu

import (
	"context"

	"crm-concierge/internal/models"
)

// ParseResult is the structured output of intent extraction.
type ParseResult struct {
	Intent              models.Intent     `json:"intent"`
	Entities            map[string]string `json:"entities"`
	ResponseLanguage    string            `json:"response_language"`
	NeedsData           bool              `json:"needs_data"`
	MissingParams       []string          `json:"missing_params"`
	ClarificationNeeded bool              `json:"clarification_needed"`
	FriendlyMessage     string            `json:"friendly_message"`
}

// IsChatOnly reports whether the result can be answered without the store.
func (r *ParseResult) IsChatOnly() bool {
	return !r.NeedsData || !r.Intent.IsData()
}

// Parser extracts intent and entities from a user message.
type Parser interface {
	Parse(ctx context.Context, query, history, language string) (*ParseResult, error)
}

// Summarizer renders query results as conversational text.
type Summarizer interface {
	Summarize(ctx context.Context, intent models.Intent, rows []map[string]interface{}, language string, mode models.Mode) (string, error)
}

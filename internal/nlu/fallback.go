// internal/nlu/fallback.go
package nlu

import (
	"strings"

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/models"
)

// KeywordClassifier is the deterministic fallback used when the model is
// unreachable or returns garbage. It only distinguishes greeting, a generic
// data request, and general chat; entity extraction is out of its reach.
type KeywordClassifier struct {
	dataKeywords     []string
	greetingKeywords []string
}

func NewKeywordClassifier(cfg config.NLUConfig) *KeywordClassifier {
	return &KeywordClassifier{
		dataKeywords:     lowerAll(cfg.DataKeywords),
		greetingKeywords: lowerAll(cfg.GreetingKeywords),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Classify maps a message to a coarse intent. A data hit routes to
// list_queries, which is always answerable without entities.
func (k *KeywordClassifier) Classify(query string) *ParseResult {
	q := strings.ToLower(query)

	for _, kw := range k.greetingKeywords {
		if strings.Contains(q, kw) {
			return &ParseResult{
				Intent:           models.IntentGreeting,
				Entities:         map[string]string{},
				ResponseLanguage: "en",
				FriendlyMessage:  "Hello! How can I help you with your travel plans today?",
			}
		}
	}

	for _, kw := range k.dataKeywords {
		if strings.Contains(q, kw) {
			return &ParseResult{
				Intent:           models.IntentListQueries,
				Entities:         map[string]string{},
				ResponseLanguage: "en",
				NeedsData:        true,
				FriendlyMessage:  "Let me look up your information.",
			}
		}
	}

	return &ParseResult{
		Intent:           models.IntentGeneralHelp,
		Entities:         map[string]string{},
		ResponseLanguage: "en",
		FriendlyMessage: "I didn't quite catch that. I can help with payments, quotations, " +
			"bookings, and your travel queries.",
	}
}

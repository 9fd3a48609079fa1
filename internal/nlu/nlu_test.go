// internal/nlu/nlu_test.go

package nlu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/models"
)

// ==========================
// ParseModelOutput
// ==========================

func TestParseModelOutput_Clean(t *testing.T) {
	raw := `{"intent":"payment_status","entities":{"query_id":"FS1234"},"response_language":"en","needs_data":true,"friendly_message":"Checking."}`

	parsed, err := ParseModelOutput(raw)
	require.NoError(t, err)

	assert.Equal(t, models.IntentPaymentStatus, parsed.Intent)
	assert.Equal(t, "FS1234", parsed.Entities["query_id"])
	assert.True(t, parsed.NeedsData)
}

func TestParseModelOutput_StripsMarkdownFence(t *testing.T) {
	raw := "```json\n{\"intent\":\"list_bookings\",\"entities\":{},\"needs_data\":true}\n```"

	parsed, err := ParseModelOutput(raw)
	require.NoError(t, err)
	assert.Equal(t, models.IntentListBookings, parsed.Intent)
}

func TestParseModelOutput_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "Sure! Here is your booking info."},
		{"truncated", `{"intent":"list_bookings","entities":`},
		{"wrong types", `{"intent":"list_bookings","needs_data":"yes"}`},
		{"non-string entity", `{"intent":"booking_status","entities":{"query_id":1234}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModelOutput(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseModelOutput_HallucinatedIntentBecomesGeneralHelp(t *testing.T) {
	raw := `{"intent":"delete_booking","entities":{},"needs_data":true}`

	parsed, err := ParseModelOutput(raw)
	require.NoError(t, err)
	assert.Equal(t, models.IntentGeneralHelp, parsed.Intent)
	assert.False(t, parsed.NeedsData)
}

func TestParseModelOutput_DropsEmptyEntities(t *testing.T) {
	raw := `{"intent":"booking_status","entities":{"query_id":"  FS1234 ","quotation_id":" "}}`

	parsed, err := ParseModelOutput(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"query_id": "FS1234"}, parsed.Entities)
}

// ==========================
// KeywordClassifier
// ==========================

func newClassifier() *KeywordClassifier {
	return NewKeywordClassifier(config.NLUConfig{
		DataKeywords:     []string{"booking", "payment", "quotation", "status", "show", "list"},
		GreetingKeywords: []string{"hi", "hello", "namaste"},
	})
}

func TestClassify(t *testing.T) {
	k := newClassifier()

	tests := []struct {
		name      string
		query     string
		intent    models.Intent
		needsData bool
	}{
		{"greeting", "Hello there", models.IntentGreeting, false},
		{"data request", "show my payment please", models.IntentListQueries, true},
		{"case insensitive", "PAYMENT STATUS?", models.IntentListQueries, true},
		{"chat", "what is the meaning of life", models.IntentGeneralHelp, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := k.Classify(tt.query)
			assert.Equal(t, tt.intent, res.Intent)
			assert.Equal(t, tt.needsData, res.NeedsData)
			assert.NotEmpty(t, res.FriendlyMessage)
		})
	}
}

// ==========================
// Prompts
// ==========================

func TestBuildIntentPrompt(t *testing.T) {
	p := BuildIntentPrompt("show my bookings", "user: hi\nbot: hello", "te")

	assert.Contains(t, p, "show my bookings")
	assert.Contains(t, p, "CONVERSATION HISTORY")
	assert.Contains(t, p, `"te"`)
	assert.Contains(t, p, "booking_status")
}

func TestBuildSummaryPrompt_ModeGatesMarginTalk(t *testing.T) {
	rows := []map[string]interface{}{{"price": 45000}}

	customer := BuildSummaryPrompt(models.IntentQuotationDetail, rows, "en", models.ModeCustomer)
	assert.Contains(t, customer, "Never mention supplier prices")

	operator := BuildSummaryPrompt(models.IntentQuotationDetail, rows, "en", models.ModeOperator)
	assert.Contains(t, operator, "gross_profit")
}

func TestBuildSummaryPrompt_CapsRows(t *testing.T) {
	rows := make([]map[string]interface{}, 10)
	for i := range rows {
		rows[i] = map[string]interface{}{"n": i}
	}

	p := BuildSummaryPrompt(models.IntentListBookings, rows, "en", models.ModeCustomer)
	assert.NotContains(t, p, `{"n":9}`)
	assert.True(t, strings.Contains(p, `{"n":4}`))
}

// internal/nlu/prompt.go
package nlu

import (
	"encoding/json"
	"fmt"
	"strings"

	"crm-concierge/internal/models"
)

const crmSchema = `## CRM Database Models:

1. **QueryMaster** (query_masters) - Central travel query/lead
   - query_id, user_name, user_email, user_mobile
   - destination_name, from_date, to_date, adult, child, infant
   - query_stage, priority, service_name, lead_source

2. **QueryQuotation** (query_quotations) - Price quotations
   - quotation_id, query_id, price, currency, status, sent_at, confirm_at

3. **QueryFlightManage** (query_flight_manages) - Flight bookings
   - query_id, pnr, flight_number, airline, from_location, to_location
   - departure_datetime, arrival_datetime, is_roundtrip

4. **QueryActivity** (query_activities) - Activity/package bookings
   - activity_id, query_id, date, destination, transfer_type, is_confirmed

5. **QueryPayment** (query_payments) - Payment summary
   - query_id, total_amount, recieved_amount, pending_amount, discount

6. **QueryPaymentScheduler** (query_payment_schedulers) - Payment transactions
   - payment_id, query_id, amount, payment_type, status, payment_date

7. **MasterAdmin** (master_admins) - Agent contacts
   - m_code, name, email, phone`

var intentPrompt = fmt.Sprintf(`You are a travel agency's AI assistant - helpful, friendly, multilingual.

## LANGUAGE & TONE:
- Detect the user's language (English, Hindi, Telugu, Hinglish, ...) and ALWAYS reply in the SAME language.
- Professional, polite, direct. NO EMOJIS.

## CONVERSATION MEMORY:
- "that one", "first one", "number 2" refer to items in the PREVIOUS list shown.
- "its payment" refers to the last discussed booking or query.

## DATABASE KNOWLEDGE:
%s

## INTENT DETECTION:
### Data lookups (needs_data: true)
- Payments: "payment status", "pending amount" -> payment_status or list_payments
- Quotations: "show quote", "QT772898" -> quotation_detail or list_quotations
- Bookings: "my flights", "PNR status" -> booking_status or list_bookings
- Queries: "travel requests", "FS1234" -> query_summary or list_queries
- Profile: "who am i", "my details" -> my_profile
- Activities: "tour status" -> activity_status
- Schedules: "installments", "payment link" -> payment_schedule
- Support contact for a trip: "contact agent" -> admin_info

### Chat only (needs_data: false)
- Help: "help me", "what can you do" -> general_help
- Greeting: "hi", "namaste" -> greeting

## ENTITY RULES:
- Query IDs look like FS1234 or 817118; quotation IDs like QT772898.
- A bare "QT772898" means quotation_detail; a bare "817118" means query_summary.
- If an ID is missing and context is unclear, set clarification_needed: true.

## RESPONSE FORMAT (JSON ONLY, no markdown, no commentary):
{
  "intent": "<one of: %s, greeting, general_help, unknown>",
  "entities": {"query_id": "...", "quotation_id": "..."},
  "response_language": "<en, hi, te, ...>",
  "needs_data": <true for CRM lookups, false for chat>,
  "missing_params": [],
  "clarification_needed": <true if an ID is strictly required>,
  "friendly_message": "<short conversational reply in the user's language>"
}`, crmSchema, strings.Join(intentNames(), ", "))

func intentNames() []string {
	names := make([]string, 0, len(models.DataIntents))
	for _, in := range models.DataIntents {
		names = append(names, string(in))
	}
	return names
}

// BuildIntentPrompt assembles the full extraction prompt for one message.
func BuildIntentPrompt(query, history, language string) string {
	var b strings.Builder
	b.WriteString(intentPrompt)

	if language != "" {
		fmt.Fprintf(&b, "\n\n## LANGUAGE REQUIREMENT:\nRespond ONLY in %q and set response_language to %q.", language, language)
	}
	if history != "" {
		fmt.Fprintf(&b, "\n\n## CONVERSATION HISTORY:\n%s\n(Resolve references like \"that\", \"it\", ordinals from this history.)", history)
	}

	fmt.Fprintf(&b, "\n\n## CURRENT USER MESSAGE:\n%s\n\n## YOUR JSON RESPONSE:", query)
	return b.String()
}

// BuildSummaryPrompt assembles the result-summarization prompt. Operator mode
// may discuss margin fields; customer mode never sees them, so the prompt
// forbids inventing them.
func BuildSummaryPrompt(intent models.Intent, rows []map[string]interface{}, language string, mode models.Mode) string {
	if len(rows) > 5 {
		rows = rows[:5]
	}
	payload, _ := json.Marshal(rows)

	lang := languageLabel(language)

	audience := "The reader is a customer. Never mention supplier prices, markups, or profit; those fields do not exist for this reader."
	if mode == models.ModeOperator {
		audience = "The reader is an internal operator. You may reference supplier_price, gross_profit, and markup_value to explain margins when present."
	}

	return fmt.Sprintf(`You are a travel agency's premium concierge. Summarize the following data.
Respond in %s.

## DATA TYPE: %s
## DATA:
%s

## STYLE:
1. Professional, high-end agency tone. NO EMOJIS.
2. Bold key numbers (amounts, IDs); aligned bullet points; concise.
3. Use the rupee sign for amounts, formatted clearly (e.g. a sum of 50000 reads as "₹50,000").
4. %s

## YOUR SUMMARY:`, lang, intent, payload, audience)
}

func languageLabel(code string) string {
	switch code {
	case "hi":
		return "Hindi"
	case "hinglish":
		return "Hinglish (mix of Hindi and English)"
	case "te":
		return "Telugu"
	case "ta":
		return "Tamil"
	default:
		return "English"
	}
}

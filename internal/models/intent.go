// internal/models/intent.go
package models

// Intent identifies what data (or conversation) the caller wants.
type Intent string

const (
	IntentBookingStatus   Intent = "booking_status"
	IntentListBookings    Intent = "list_bookings"
	IntentQuerySummary    Intent = "query_summary"
	IntentListQueries     Intent = "list_queries"
	IntentQuotationDetail Intent = "quotation_detail"
	IntentListQuotations  Intent = "list_quotations"
	IntentPaymentStatus   Intent = "payment_status"
	IntentListPayments    Intent = "list_payments"
	IntentPaymentSchedule Intent = "payment_schedule"
	IntentActivityStatus  Intent = "activity_status"
	IntentAdminInfo       Intent = "admin_info"
	IntentMyProfile       Intent = "my_profile"
	IntentMessageHistory  Intent = "message_history"

	// Chat-only intents. These never reach the planner.
	IntentGreeting    Intent = "greeting"
	IntentGeneralHelp Intent = "general_help"
	IntentUnknown     Intent = "unknown"
)

// DataIntents are the intents backed by a catalog template. Order is fixed so
// startup validation and the /intents endpoint stay deterministic.
var DataIntents = []Intent{
	IntentBookingStatus,
	IntentListBookings,
	IntentQuerySummary,
	IntentListQueries,
	IntentQuotationDetail,
	IntentListQuotations,
	IntentPaymentStatus,
	IntentListPayments,
	IntentPaymentSchedule,
	IntentActivityStatus,
	IntentAdminInfo,
	IntentMyProfile,
	IntentMessageHistory,
}

var knownIntents = func() map[Intent]struct{} {
	m := make(map[Intent]struct{}, len(DataIntents)+3)
	for _, in := range DataIntents {
		m[in] = struct{}{}
	}
	m[IntentGreeting] = struct{}{}
	m[IntentGeneralHelp] = struct{}{}
	m[IntentUnknown] = struct{}{}
	return m
}()

// ParseIntent maps a raw tag to a known Intent, falling back to IntentUnknown.
func ParseIntent(raw string) Intent {
	in := Intent(raw)
	if _, ok := knownIntents[in]; ok {
		return in
	}
	return IntentUnknown
}

// IsData reports whether the intent is backed by a query template.
func (i Intent) IsData() bool {
	for _, in := range DataIntents {
		if in == i {
			return true
		}
	}
	return false
}

// IsUnknown reports whether the intent is the unknown sentinel.
func (i Intent) IsUnknown() bool {
	return i == IntentUnknown || i == ""
}

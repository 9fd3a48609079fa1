// internal/core/exposure/exposure.go

// Package exposure owns the field-level redaction policy: which columns may
// ever leave the system per record kind, and which of those are additionally
// stripped for customer-mode callers.
package exposure

// RecordKind names a logical record shape returned by the catalog templates.
type RecordKind string

const (
	KindQuery     RecordKind = "query"
	KindQuotation RecordKind = "quotation"
	KindFlight    RecordKind = "flight"
	KindActivity  RecordKind = "activity"
	KindMarkup    RecordKind = "markup"
	KindPayment   RecordKind = "payment"
	KindSchedule  RecordKind = "schedule"
	KindAgent     RecordKind = "agent"
	KindMessage   RecordKind = "message"
	KindUser      RecordKind = "user"
)

// exposedFields is the curated per-kind allowlist. A field absent here never
// leaves the system regardless of mode.
var exposedFields = map[RecordKind]map[string]struct{}{
	KindQuery: set(
		"query_id", "user_name", "user_email", "user_mobile",
		"destination_name", "from_date", "to_date", "travel_month",
		"adult", "child", "infant", "query_stage", "priority",
		"assign_to", "service", "service_name", "remark", "lead_source",
		"created_at",
	),
	KindQuotation: set(
		"quotation_id", "query_id", "price", "supplier_price",
		"currency", "status", "query_type", "sent_at", "confirm_at",
	),
	KindFlight: set(
		"quotation_id", "query_id", "from_location", "to_location",
		"flight_number", "airline", "airline_code",
		"departure_datetime", "arrival_datetime", "pnr",
		"number_of_stops", "onward_adult_price",
		"adult_price", "child_price", "infant_price",
		"return_from_location", "return_to_location",
		"return_flight_number", "return_airline",
		"return_departure_datetime", "return_arrival_datetime",
		"is_roundtrip", "is_confirmed", "confirmed_date",
	),
	KindActivity: set(
		"activity_id", "query_id", "activity_option_id", "quotation_id",
		"date", "days", "transfer_type", "destination",
		"adult_cost", "child_cost", "is_confirmed", "confirmed_date",
	),
	KindMarkup: set(
		"query_id", "markup_type", "markup_value",
	),
	KindPayment: set(
		"query_id", "quotation_id", "net_amount", "total_amount",
		"recieved_amount", "pending_amount", "grand_total_amount",
		"gross_profit", "supplier_amount", "supplier_recieved",
		"supplier_pending", "supplier_id", "cgst", "sgst", "igst",
		"tcs", "gst_on_markup", "markup_type", "markup_value",
		"discount", "discount_name",
	),
	KindSchedule: set(
		"payment_id", "query_id", "payment_type", "amount",
		"payment_receipt", "status", "gateway_name", "payment_link",
		"payment_link_sent_at", "payment_date", "payment_time",
		"transaction_id", "last_action_by",
	),
	KindAgent: set(
		"m_code", "name", "email", "phone", "user_type",
	),
	KindMessage: set(
		"message", "message_id", "message_type", "message_status",
		"jid", "is_image", "image_url", "is_document",
		"document_url", "created_at",
	),
	KindUser: set(
		"name", "email", "user_mobile", "email_verified_at",
		// password is NEVER exposed
	),
}

// sensitiveFields are stripped for customer mode at any nesting depth. The
// check is by field name, not position, so an unanticipated nesting path can
// never leak one.
var sensitiveFields = set(
	"supplier_price", "gross_profit", "markup_value", "markup_type",
	"supplier_amount", "supplier_recieved", "supplier_pending",
	"gross_markup_type", "gross_markup_value", "gst_on_markup",
	"supplier_id", "onward_supplier_price", "return_supplier_price",
)

// internalBundles are operator-only top-level aggregates dropped wholesale
// from a customer-mode context bundle.
var internalBundles = set("markups")

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// Fields returns the exposed field set for a record kind. The returned map
// is shared; callers must not mutate it.
func Fields(kind RecordKind) map[string]struct{} {
	return exposedFields[kind]
}

// Allowed reports whether a field may leave the system for the given kind.
func Allowed(kind RecordKind, field string) bool {
	_, ok := exposedFields[kind][field]
	return ok
}

// IsSensitive reports whether a field name is customer-stripped.
func IsSensitive(field string) bool {
	_, ok := sensitiveFields[field]
	return ok
}

// Kinds returns all known record kinds.
func Kinds() []RecordKind {
	return []RecordKind{
		KindQuery, KindQuotation, KindFlight, KindActivity, KindMarkup,
		KindPayment, KindSchedule, KindAgent, KindMessage, KindUser,
	}
}

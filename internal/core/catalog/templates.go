// internal/core/catalog/templates.go
package catalog

import (
	"crm-concierge/internal/core/exposure"
	"crm-concierge/internal/models"
)

// All queries enforce identity scoping via a JOIN to query_masters. The
// mobile parameter is bound as a wildcard-prefixed 10-digit tail so stored
// country-code variants still match.
var templates = map[models.Intent]Template{
	models.IntentBookingStatus: {
		Intent:      models.IntentBookingStatus,
		Description: "Get booking confirmation & flight details",
		Required:    []string{"query_id"},
		Body: `
			SELECT
				qf.query_id, qf.pnr, qf.is_roundtrip,
				qf.flight_number, qf.airline, qf.airline_code,
				qf.from_location, qf.to_location,
				qf.departure_datetime, qf.arrival_datetime,
				qf.number_of_stops,
				qf.return_flight_number, qf.return_departure_datetime, qf.return_arrival_datetime,
				qf.adult_price, qf.child_price, qf.infant_price
			FROM query_flight_manages qf
			JOIN query_masters qm ON qf.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			  AND qf.query_id = $2
			LIMIT 1`,
		Shape:  "SELECT qf.* FROM query_flight_manages qf JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ? AND qf.query_id = ?",
		Params: []string{"mobile", "query_id"},
		Kind:   exposure.KindFlight,
		Single: true,
	},

	models.IntentListBookings: {
		Intent:      models.IntentListBookings,
		Description: "List all bookings for user",
		Optional:    []string{"status"},
		Body: `
			SELECT
				qf.query_id, qf.pnr, qf.is_roundtrip,
				qf.flight_number, qf.airline,
				qf.from_location, qf.to_location,
				qf.departure_datetime, qf.arrival_datetime
			FROM query_flight_manages qf
			JOIN query_masters qm ON qf.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			ORDER BY qf.departure_datetime DESC
			LIMIT $2 OFFSET $3`,
		Shape:  "SELECT qf.* FROM query_flight_manages qf JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ? LIMIT ? OFFSET ?",
		Params: []string{"mobile", "limit", "offset"},
		Kind:   exposure.KindFlight,
	},

	models.IntentQuerySummary: {
		Intent:      models.IntentQuerySummary,
		Description: "Consolidated view for a query",
		Required:    []string{"query_id"},
		Body: `
			SELECT
				qm.query_id, qm.user_name, qm.user_mobile, qm.user_email,
				qm.destination_name, qm.from_date, qm.to_date,
				qm.adult, qm.child, qm.infant,
				qm.query_stage, qm.service, qm.service_name,
				qm.lead_source, qm.priority,
				qq.quotation_id, qq.price, qq.currency, qq.status AS quotation_status,
				qp.pending_amount, qp.recieved_amount, qp.total_amount,
				qf.pnr, qf.flight_number, qf.airline
			FROM query_masters qm
			LEFT JOIN query_quotations qq ON qm.query_id = qq.query_id
			LEFT JOIN query_payments qp ON qm.query_id = qp.query_id
			LEFT JOIN query_flight_manages qf ON qm.query_id = qf.query_id
			WHERE qm.user_mobile LIKE $1
			  AND qm.query_id = $2
			LIMIT 1`,
		Shape:  "SELECT qm.*, qq.*, qp.*, qf.* FROM query_masters qm LEFT JOIN ... WHERE qm.user_mobile LIKE ? AND qm.query_id = ?",
		Params: []string{"mobile", "query_id"},
		Kind:   exposure.KindQuery,
		Single: true,
	},

	models.IntentListQueries: {
		Intent:      models.IntentListQueries,
		Description: "List all travel queries/requests for user",
		Body: `
			SELECT
				qm.query_id, qm.user_name, qm.user_email, qm.user_mobile,
				qm.destination_name, qm.from_date, qm.to_date,
				qm.adult, qm.child, qm.infant,
				qm.query_stage, qm.service_name, qm.priority,
				qm.created_at
			FROM query_masters qm
			WHERE qm.user_mobile LIKE $1
			ORDER BY qm.created_at DESC
			LIMIT $2 OFFSET $3`,
		Shape:  "SELECT qm.* FROM query_masters qm WHERE qm.user_mobile LIKE ? LIMIT ? OFFSET ?",
		Params: []string{"mobile", "limit", "offset"},
		Kind:   exposure.KindQuery,
	},

	models.IntentQuotationDetail: {
		Intent:      models.IntentQuotationDetail,
		Description: "Get quotation details",
		Required:    []string{"query_id"},
		Optional:    []string{"quotation_id"},
		Body: `
			SELECT
				qq.quotation_id, qq.query_id, qq.price, qq.supplier_price,
				qq.currency, qq.status, qq.query_type, qq.sent_at, qq.confirm_at
			FROM query_quotations qq
			JOIN query_masters qm ON qq.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			  AND qq.query_id = $2
			ORDER BY qq.sent_at DESC
			LIMIT $3`,
		Shape:  "SELECT qq.* FROM query_quotations qq JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ? AND qq.query_id = ?",
		Params: []string{"mobile", "query_id", "limit"},
		Kind:   exposure.KindQuotation,
	},

	models.IntentListQuotations: {
		Intent:      models.IntentListQuotations,
		Description: "List all quotations for user",
		Optional:    []string{"query_id"},
		Body: `
			SELECT
				qq.quotation_id, qq.query_id, qq.price, qq.currency,
				qq.status, qq.sent_at, qq.confirm_at
			FROM query_quotations qq
			JOIN query_masters qm ON qq.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			ORDER BY qq.sent_at DESC
			LIMIT $2 OFFSET $3`,
		Shape:  "SELECT qq.* FROM query_quotations qq JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ?",
		Params: []string{"mobile", "limit", "offset"},
		Kind:   exposure.KindQuotation,
	},

	models.IntentPaymentStatus: {
		Intent:      models.IntentPaymentStatus,
		Description: "Get payment details for a query",
		Required:    []string{"query_id"},
		Body: `
			SELECT
				qp.query_id, qp.quotation_id, qp.net_amount, qp.total_amount,
				qp.recieved_amount, qp.pending_amount, qp.grand_total_amount,
				qp.cgst, qp.sgst, qp.igst, qp.discount, qp.discount_name,
				qp.gross_profit, qp.supplier_amount
			FROM query_payments qp
			JOIN query_masters qm ON qp.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			  AND qp.query_id = $2
			LIMIT 1`,
		Shape:  "SELECT qp.* FROM query_payments qp JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ? AND qp.query_id = ?",
		Params: []string{"mobile", "query_id"},
		Kind:   exposure.KindPayment,
		Single: true,
	},

	models.IntentListPayments: {
		Intent:      models.IntentListPayments,
		Description: "List all payments for user",
		Optional:    []string{"status"},
		Body: `
			SELECT
				qp.query_id, qp.pending_amount, qp.recieved_amount,
				qp.total_amount, qp.grand_total_amount, qp.discount
			FROM query_payments qp
			JOIN query_masters qm ON qp.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			ORDER BY qp.id DESC
			LIMIT $2 OFFSET $3`,
		Shape:  "SELECT qp.* FROM query_payments qp JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ?",
		Params: []string{"mobile", "limit", "offset"},
		Kind:   exposure.KindPayment,
	},

	models.IntentPaymentSchedule: {
		Intent:      models.IntentPaymentSchedule,
		Description: "Get scheduled payments for a query",
		Required:    []string{"query_id"},
		Body: `
			SELECT
				ps.payment_id, ps.query_id, ps.amount, ps.payment_type,
				ps.status, ps.payment_link, ps.payment_link_sent_at,
				ps.payment_date, ps.payment_time, ps.payment_receipt,
				ps.gateway_name, ps.transaction_id
			FROM query_payment_schedulers ps
			JOIN query_masters qm ON ps.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			  AND ps.query_id = $2
			ORDER BY ps.payment_date ASC`,
		Shape:  "SELECT ps.* FROM query_payment_schedulers ps JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ? AND ps.query_id = ?",
		Params: []string{"mobile", "query_id"},
		Kind:   exposure.KindSchedule,
	},

	models.IntentActivityStatus: {
		Intent:      models.IntentActivityStatus,
		Description: "Get activity booking details",
		Required:    []string{"query_id"},
		Optional:    []string{"activity_id"},
		Body: `
			SELECT
				qa.activity_id, qa.query_id, qa.activity_option_id, qa.quotation_id,
				qa.date, qa.transfer_type, qa.destination,
				qa.adult_cost, qa.child_cost, qa.is_confirmed, qa.confirmed_date
			FROM query_activities qa
			JOIN query_masters qm ON qa.query_id = qm.query_id
			WHERE qm.user_mobile LIKE $1
			  AND qa.query_id = $2
			ORDER BY qa.date ASC`,
		Shape:  "SELECT qa.* FROM query_activities qa JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ? AND qa.query_id = ?",
		Params: []string{"mobile", "query_id"},
		Kind:   exposure.KindActivity,
	},

	models.IntentAdminInfo: {
		Intent:      models.IntentAdminInfo,
		Description: "Get agent contact info for a query",
		Required:    []string{"query_id"},
		Body: `
			SELECT
				ma.name, ma.email, ma.phone, ma.user_type, ma.m_code
			FROM master_admins ma
			JOIN query_masters qm ON qm.assign_to = ma.m_code OR qm.admin_ref = ma.m_code
			WHERE qm.user_mobile LIKE $1
			  AND qm.query_id = $2
			LIMIT 1`,
		Shape:  "SELECT ma.* FROM master_admins ma JOIN query_masters qm ON ... WHERE qm.user_mobile LIKE ? AND qm.query_id = ?",
		Params: []string{"mobile", "query_id"},
		Kind:   exposure.KindAgent,
		Single: true,
	},

	models.IntentMyProfile: {
		Intent:      models.IntentMyProfile,
		Description: "Get comprehensive user profile with data from all tables",
		Body: `
			SELECT
				qm.user_name, qm.user_mobile, qm.user_email,
				COUNT(DISTINCT qm.query_id) AS total_trips_planned,
				(SELECT SUM(qp.recieved_amount)
				 FROM query_payments qp
				 JOIN query_masters qm2 ON qp.query_id = qm2.query_id
				 WHERE qm2.user_mobile LIKE $1) AS total_spent,
				(SELECT string_agg('#' || sub_q.query_id || ' ' || sub_q.destination_name ||
				        ' (' || to_char(sub_q.created_at, 'YYYY-MM-DD') || ')', ' | ')
				 FROM (SELECT * FROM query_masters
				       WHERE user_mobile LIKE $1
				       ORDER BY created_at DESC LIMIT 5) sub_q) AS recent_queries,
				(SELECT string_agg(sub_f.airline || ' ' || sub_f.flight_number || ' ' ||
				        sub_f.from_location || '-' || sub_f.to_location, ' | ')
				 FROM (SELECT qf.* FROM query_flight_manages qf
				       JOIN query_masters qm3 ON qf.query_id = qm3.query_id
				       WHERE qm3.user_mobile LIKE $1
				       ORDER BY qf.departure_datetime DESC LIMIT 5) sub_f) AS recent_flights
			FROM query_masters qm
			WHERE qm.user_mobile LIKE $1
			GROUP BY qm.user_name, qm.user_mobile, qm.user_email
			LIMIT 1`,
		Shape:  "SELECT user_name, total_trips, total_spent... FROM query_masters WHERE user_mobile LIKE ?",
		Params: []string{"mobile"},
		Kind:   exposure.KindUser,
		Single: true,
	},

	models.IntentMessageHistory: {
		Intent:      models.IntentMessageHistory,
		Description: "Get WhatsApp message history (table not yet created)",
		Optional:    []string{"query_id"},
		Body:        `SELECT 'Message history is not yet available' AS message`,
		Shape:       "SELECT message FROM ... (table not available)",
		Params:      []string{},
		Kind:        exposure.KindMessage,
	},
}

// internal/core/respond/respond.go

// Package respond builds the two response envelopes. Every outbound payload
// goes through Normalize first so drivers' raw types never reach JSON
// encoding.
package respond

import (
	"time"

	apperrors "crm-concierge/internal/common/errors"
	"crm-concierge/internal/core/planner"
	"crm-concierge/internal/models"
)

// Normalize rewrites driver-level values into JSON-friendly ones: time.Time
// becomes RFC 3339, []byte becomes string. Maps and slices are walked in
// place.
func Normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case map[string]interface{}:
		for k, inner := range val {
			val[k] = Normalize(inner)
		}
		return val
	case []map[string]interface{}:
		for _, row := range val {
			Normalize(row)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = Normalize(inner)
		}
		return val
	default:
		return v
	}
}

// Success assembles the success envelope for an executed plan. Single-row
// templates render their payload as an object and report at most one row;
// list templates report the row count.
func Success(plan *planner.QueryPlan, rows []map[string]interface{}, entities map[string]string, summary string) *models.QueryResponse {
	var data interface{}
	count := len(rows)

	if plan.Single {
		if count > 0 {
			data = Normalize(rows[0])
			count = 1
		}
	} else {
		data = Normalize(rows)
	}

	return &models.QueryResponse{
		Success:  true,
		Intent:   plan.Intent,
		Entities: entities,
		Data:     data,
		Summary:  summary,
		Metadata: &models.QueryMetadata{
			Rows: count,
			SQL:  plan.Shape,
		},
	}
}

// Context assembles the envelope for an aggregated context bundle. The
// bundle is one object rather than template rows, so no query metadata is
// attached; the caller normalizes and sanitizes before handing it over.
func Context(intent models.Intent, bundle interface{}, entities map[string]string, summary string) *models.QueryResponse {
	return &models.QueryResponse{
		Success:  true,
		Intent:   intent,
		Entities: entities,
		Data:     bundle,
		Summary:  summary,
	}
}

// Chat assembles the envelope for chat-only intents: no data, no metadata.
func Chat(intent models.Intent, summary string) *models.QueryResponse {
	return &models.QueryResponse{
		Success: true,
		Intent:  intent,
		Summary: summary,
	}
}

// FromPlanError maps a planning failure onto the error taxonomy.
func FromPlanError(perr *planner.PlanError) *apperrors.AppError {
	switch perr.Kind {
	case planner.UnknownIntent:
		return apperrors.NewUnknownIntentError(perr.Message)
	case planner.NeedsEnumeration, planner.MissingParameters:
		return apperrors.NewAmbiguousEntityError(perr.Message)
	case planner.InvalidParameter:
		return apperrors.NewValidationError(perr.Message)
	default:
		return apperrors.NewInternalError(perr)
	}
}

// Error assembles the error envelope. Diagnostic details are released to
// operator-mode callers only; customers always get the safe message alone.
func Error(err error, mode models.Mode) *models.ErrorResponse {
	appErr := apperrors.AsAppError(err)

	resp := &models.ErrorResponse{
		Success:   false,
		ErrorCode: string(appErr.Code),
		Message:   appErr.Message,
	}
	if mode == models.ModeOperator {
		resp.Details = appErr.Details
	}
	return resp
}

// internal/models/response.go
package models

// QueryMetadata describes the result without ever carrying bound values. SQL
// holds the sanitized shape string of the executed template. FallbackFrom is
// set when a detail intent lacked its identifier and the matching list
// intent was served instead, so clients can drive the pick-one flow.
type QueryMetadata struct {
	Rows         int    `json:"rows"`
	SQL          string `json:"sql,omitempty"`
	FallbackFrom Intent `json:"fallback_from,omitempty"`
}

// QueryResponse is the success envelope for POST /mvp/query.
type QueryResponse struct {
	Success  bool              `json:"success"`
	Intent   Intent            `json:"intent,omitempty"`
	Entities map[string]string `json:"entities,omitempty"`
	Data     interface{}       `json:"data,omitempty"`
	Summary  string            `json:"summary,omitempty"`
	Metadata *QueryMetadata    `json:"metadata,omitempty"`
}

// ErrorResponse is the error envelope. Details is populated for operator-mode
// callers only; customers get the generic message alone.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}

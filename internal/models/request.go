// internal/models/request.go
package models

// QueryRequest is the decoded body of POST /mvp/query.
type QueryRequest struct {
	Identity string            `json:"identity" binding:"required"`
	Mode     string            `json:"mode"`
	Query    string            `json:"query" binding:"required,max=500"`
	Context  []ContextTurn     `json:"conversation_context"`
	Language string            `json:"preferred_language"`
	Entities map[string]string `json:"entities"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ContextTurn is one prior exchange threaded into the NLU prompt.
type ContextTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

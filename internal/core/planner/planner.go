// internal/core/planner/planner.go

// Package planner turns a detected intent plus untrusted entities into a
// fully bound, validated query plan. It performs no I/O.
package planner

import (
	"fmt"
	"strings"

	"crm-concierge/internal/core/catalog"
	"crm-concierge/internal/core/sqlguard"
	"crm-concierge/internal/models"
)

// IdentifierEntity is the record-selecting entity that triggers the
// enumeration fallback when absent: instead of failing, the caller is told to
// list the identity's own records first.
const IdentifierEntity = "query_id"

// ErrorKind classifies planning failures.
type ErrorKind int

const (
	UnknownIntent ErrorKind = iota
	NeedsEnumeration
	MissingParameters
	InvalidParameter
)

// PlanError is a recoverable planning failure; it never carries bound values.
type PlanError struct {
	Kind    ErrorKind
	Message string
	Missing []string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan error (%d): %s", e.Kind, e.Message)
}

// QueryPlan is a ready-to-execute instance of a catalog template. Params is
// the validated parameter map; the bind order comes from the template so no
// caller-supplied text ever enters the body.
type QueryPlan struct {
	Intent models.Intent
	Body   string
	Shape  string
	Kind   string
	Single bool
	Params map[string]interface{}

	order []string
}

// Args returns the bind values in template placeholder order.
func (p *QueryPlan) Args() []interface{} {
	args := make([]interface{}, 0, len(p.order))
	for _, name := range p.order {
		args = append(args, p.Params[name])
	}
	return args
}

// Planner binds intents to catalog templates under the parameter guard.
type Planner struct {
	guard sqlguard.Guard
}

func New(maxLimit int) *Planner {
	return &Planner{guard: sqlguard.Guard{MaxLimit: maxLimit}}
}

// Plan resolves the template for intent, checks required entities, merges the
// identity scope with the supplied entities, and validates the result.
func (pl *Planner) Plan(
	intent models.Intent,
	entities map[string]string,
	identity string,
	limit, offset int,
) (*QueryPlan, *PlanError) {
	if intent.IsUnknown() {
		return nil, &PlanError{
			Kind: UnknownIntent,
			Message: "I couldn't understand your request. Try asking about bookings, payments, " +
				"quotations, or activities. For example: 'Show my booking for FS1234' or 'List my payments'.",
		}
	}

	tmpl, ok := catalog.Lookup(intent)
	if !ok {
		return nil, &PlanError{
			Kind:    UnknownIntent,
			Message: fmt.Sprintf("No template found for intent: %s", intent),
		}
	}

	var missing []string
	for _, name := range tmpl.Required {
		if strings.TrimSpace(entities[name]) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		for _, name := range missing {
			if name == IdentifierEntity {
				// Two-step disambiguation: enumerate the caller's own
				// records before asking again with an identifier.
				return nil, &PlanError{
					Kind:    NeedsEnumeration,
					Message: "Which record are you asking about? Let me list yours first.",
					Missing: missing,
				}
			}
		}
		return nil, &PlanError{
			Kind:    MissingParameters,
			Message: fmt.Sprintf("Please provide the following: %s.", strings.Join(missing, ", ")),
			Missing: missing,
		}
	}

	params := map[string]interface{}{
		"mobile": "%" + identity,
		"limit":  limit,
		"offset": offset,
	}
	for key, value := range entities {
		if strings.TrimSpace(value) != "" {
			params[key] = value
		}
	}

	checked, err := pl.guard.CheckParams(params)
	if err != nil {
		return nil, &PlanError{
			Kind:    InvalidParameter,
			Message: err.Error(),
		}
	}

	return &QueryPlan{
		Intent: intent,
		Body:   tmpl.Body,
		Shape:  tmpl.Shape,
		Kind:   string(tmpl.Kind),
		Single: tmpl.Single,
		Params: checked,
		order:  tmpl.Params,
	}, nil
}

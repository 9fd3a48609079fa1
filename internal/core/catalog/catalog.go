// internal/core/catalog/catalog.go

// Package catalog holds the fixed set of parameterized read-only query
// templates, one per data intent. Templates are defined at init and never
// mutated; the required-entity list of a template is the sole source of truth
// for whether a request is fully specified.
package catalog

import (
	"fmt"
	"regexp"

	"crm-concierge/internal/core/exposure"
	"crm-concierge/internal/core/sqlguard"
	"crm-concierge/internal/models"
)

// Template is an immutable, parameterized read-only query.
//
// Body uses positional $N placeholders; Params names the parameter-map key
// bound to each position, in order. Shape is the placeholder-only audit
// string logged and echoed in response metadata; it never carries bound
// values.
type Template struct {
	Intent      models.Intent
	Description string
	Required    []string
	Optional    []string
	Body        string
	Shape       string
	Params      []string
	Kind        exposure.RecordKind

	// Single marks templates that return at most one row; their payload is
	// rendered as an object instead of a list.
	Single bool
}

// Lookup resolves the template for an intent.
func Lookup(intent models.Intent) (Template, bool) {
	t, ok := templates[intent]
	return t, ok
}

// All returns the templates in fixed intent order.
func All() []Template {
	out := make([]Template, 0, len(models.DataIntents))
	for _, in := range models.DataIntents {
		out = append(out, templates[in])
	}
	return out
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// Validate runs the startup checks: every data intent has a template, every
// template passes the read-only shape check, placeholder positions line up
// with the declared bind order, and the declared record kind exists in the
// exposure map. Called from main before the server accepts traffic.
func Validate() error {
	for _, intent := range models.DataIntents {
		t, ok := templates[intent]
		if !ok {
			return fmt.Errorf("catalog: intent %s has no template", intent)
		}

		if err := sqlguard.CheckTemplate(t.Body); err != nil {
			return fmt.Errorf("catalog: template %s: %w", intent, err)
		}

		maxPos := 0
		for _, m := range placeholderPattern.FindAllStringSubmatch(t.Body, -1) {
			var n int
			fmt.Sscanf(m[1], "%d", &n)
			if n > maxPos {
				maxPos = n
			}
		}
		if maxPos != len(t.Params) {
			return fmt.Errorf("catalog: template %s binds %d params but declares %d",
				intent, maxPos, len(t.Params))
		}

		if exposure.Fields(t.Kind) == nil {
			return fmt.Errorf("catalog: template %s references unknown record kind %q",
				intent, t.Kind)
		}
	}
	return nil
}

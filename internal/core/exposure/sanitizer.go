// internal/core/exposure/sanitizer.go
package exposure

import "crm-concierge/internal/models"

// Sanitize applies the mode-gated recursive strip and returns a new tree.
// Operator mode passes through untouched. Customer mode drops operator-only
// top-level bundles and removes every sensitive field name at any depth.
// Sanitizing twice yields the same result as sanitizing once.
func Sanitize(v Value, mode models.Mode) Value {
	if mode == models.ModeOperator {
		return v
	}

	if v.kind == KindRecord {
		fields := make(map[string]Value, len(v.record))
		for name, item := range v.record {
			if _, internal := internalBundles[name]; internal {
				continue
			}
			if IsSensitive(name) {
				continue
			}
			fields[name] = strip(item)
		}
		return RecordOf(fields)
	}

	return strip(v)
}

// strip removes sensitive field names from every record at every depth.
func strip(v Value) Value {
	switch v.kind {
	case KindRecord:
		fields := make(map[string]Value, len(v.record))
		for name, item := range v.record {
			if IsSensitive(name) {
				continue
			}
			fields[name] = strip(item)
		}
		return RecordOf(fields)
	case KindList:
		items := make([]Value, 0, len(v.list))
		for _, item := range v.list {
			items = append(items, strip(item))
		}
		return ListOf(items)
	default:
		return v
	}
}

// SanitizeAny is the convenience wrapper for executor output: convert, strip,
// convert back.
func SanitizeAny(raw interface{}, mode models.Mode) interface{} {
	if mode == models.ModeOperator {
		return raw
	}
	return Sanitize(FromAny(raw), mode).ToAny()
}

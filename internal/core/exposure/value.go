// internal/core/exposure/value.go
package exposure

// ValueKind tags the explicit tree type the sanitizer walks.
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindRecord
	KindList
)

// Value is a tagged tree node: a record (string-keyed mapping), a list, or an
// opaque scalar. The sanitizer is a pure transform over this type, so there
// is no aliasing between input and output containers.
type Value struct {
	kind   ValueKind
	scalar interface{}
	record map[string]Value
	list   []Value
}

func ScalarOf(v interface{}) Value {
	return Value{kind: KindScalar, scalar: v}
}

func RecordOf(fields map[string]Value) Value {
	return Value{kind: KindRecord, record: fields}
}

func ListOf(items []Value) Value {
	return Value{kind: KindList, list: items}
}

// Kind returns the node's tag.
func (v Value) Kind() ValueKind { return v.kind }

// FromAny converts raw executor output (maps, slices, scalars) into the
// tagged form. Unknown container types degrade to scalars untouched.
func FromAny(raw interface{}) Value {
	switch t := raw.(type) {
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromAny(item)
		}
		return RecordOf(fields)
	case []map[string]interface{}:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return ListOf(items)
	case []interface{}:
		items := make([]Value, 0, len(t))
		for _, item := range t {
			items = append(items, FromAny(item))
		}
		return ListOf(items)
	default:
		return ScalarOf(raw)
	}
}

// ToAny converts back to plain containers for JSON encoding.
func (v Value) ToAny() interface{} {
	switch v.kind {
	case KindRecord:
		out := make(map[string]interface{}, len(v.record))
		for k, item := range v.record {
			out[k] = item.ToAny()
		}
		return out
	case KindList:
		out := make([]interface{}, 0, len(v.list))
		for _, item := range v.list {
			out = append(out, item.ToAny())
		}
		return out
	default:
		return v.scalar
	}
}

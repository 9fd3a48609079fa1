// internal/core/exposure/exposure_test.go

package exposure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-concierge/internal/models"
)

// ==========================
// Policy tables
// ==========================

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(KindPayment, "pending_amount"))
	assert.True(t, Allowed(KindAgent, "phone"))
	assert.False(t, Allowed(KindUser, "password"))
	assert.False(t, Allowed(KindAgent, "salary"))
}

func TestIsSensitive(t *testing.T) {
	for _, field := range []string{
		"supplier_price", "gross_profit", "markup_value", "markup_type",
		"supplier_amount", "supplier_recieved", "supplier_pending",
		"gross_markup_type", "gross_markup_value", "gst_on_markup",
		"supplier_id", "onward_supplier_price", "return_supplier_price",
	} {
		assert.True(t, IsSensitive(field), field)
	}
	assert.False(t, IsSensitive("pending_amount"))
	assert.False(t, IsSensitive("price"))
}

// ==========================
// Sanitize
// ==========================

func bundle() Value {
	return RecordOf(map[string]Value{
		"profile": RecordOf(map[string]Value{
			"user_name": ScalarOf("Asha"),
		}),
		"markups": ListOf([]Value{
			RecordOf(map[string]Value{"markup_value": ScalarOf(500)}),
		}),
		"recent_payments": ListOf([]Value{
			RecordOf(map[string]Value{
				"pending_amount": ScalarOf(5000),
				"gross_profit":   ScalarOf(12000),
				"nested": RecordOf(map[string]Value{
					"deeper": ListOf([]Value{
						RecordOf(map[string]Value{
							"supplier_price": ScalarOf(33000),
							"price":          ScalarOf(45000),
						}),
					}),
				}),
			}),
		}),
	})
}

func TestSanitize_OperatorPassthrough(t *testing.T) {
	out := Sanitize(bundle(), models.ModeOperator).ToAny().(map[string]interface{})

	assert.Contains(t, out, "markups")
	payments := out["recent_payments"].([]interface{})
	assert.Contains(t, payments[0].(map[string]interface{}), "gross_profit")
}

func TestSanitize_CustomerStripsAtEveryDepth(t *testing.T) {
	out := Sanitize(bundle(), models.ModeCustomer).ToAny().(map[string]interface{})

	assert.NotContains(t, out, "markups")
	assert.Contains(t, out, "profile")

	payments := out["recent_payments"].([]interface{})
	payment := payments[0].(map[string]interface{})
	assert.NotContains(t, payment, "gross_profit")
	assert.Contains(t, payment, "pending_amount")

	deeper := payment["nested"].(map[string]interface{})["deeper"].([]interface{})
	leaf := deeper[0].(map[string]interface{})
	assert.NotContains(t, leaf, "supplier_price")
	assert.Equal(t, 45000, leaf["price"])
}

func TestSanitize_Idempotent(t *testing.T) {
	once := Sanitize(bundle(), models.ModeCustomer)
	twice := Sanitize(once, models.ModeCustomer)
	assert.Equal(t, once.ToAny(), twice.ToAny())
}

func TestSanitize_DeepNestingIsTotal(t *testing.T) {
	// Five levels of alternating records and lists, a sensitive name at the
	// bottom.
	leaf := RecordOf(map[string]Value{"supplier_id": ScalarOf(9), "ok": ScalarOf(1)})
	v := leaf
	for i := 0; i < 5; i++ {
		v = RecordOf(map[string]Value{"level": ListOf([]Value{v})})
	}

	out := Sanitize(v, models.ModeCustomer)

	cur := out.ToAny()
	for i := 0; i < 5; i++ {
		cur = cur.(map[string]interface{})["level"].([]interface{})[0]
	}
	bottom := cur.(map[string]interface{})
	assert.NotContains(t, bottom, "supplier_id")
	assert.Equal(t, 1, bottom["ok"])
}

// ==========================
// SanitizeAny
// ==========================

func TestSanitizeAny_RowSlices(t *testing.T) {
	rows := []map[string]interface{}{
		{"price": 45000, "supplier_price": 33000},
	}

	clean, ok := SanitizeAny(rows, models.ModeCustomer).([]interface{})
	require.True(t, ok)
	require.Len(t, clean, 1)

	row := clean[0].(map[string]interface{})
	assert.NotContains(t, row, "supplier_price")
	assert.Equal(t, 45000, row["price"])
}

func TestSanitizeAny_OperatorReturnsInputUnchanged(t *testing.T) {
	rows := []map[string]interface{}{{"supplier_price": 33000}}

	out, ok := SanitizeAny(rows, models.ModeOperator).([]map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, out[0], "supplier_price")
}

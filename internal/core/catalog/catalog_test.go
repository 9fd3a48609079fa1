// internal/core/catalog/catalog_test.go

package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-concierge/internal/core/sqlguard"
	"crm-concierge/internal/models"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate())
}

func TestLookup(t *testing.T) {
	tmpl, ok := Lookup(models.IntentBookingStatus)
	require.True(t, ok)
	assert.Equal(t, models.IntentBookingStatus, tmpl.Intent)
	assert.Equal(t, []string{"query_id"}, tmpl.Required)

	_, ok = Lookup(models.IntentGreeting)
	assert.False(t, ok)
}

func TestAll_CoversEveryDataIntent(t *testing.T) {
	all := All()
	require.Len(t, all, len(models.DataIntents))
	for i, tmpl := range all {
		assert.Equal(t, models.DataIntents[i], tmpl.Intent)
	}
}

func TestTemplates_AreReadOnly(t *testing.T) {
	for _, tmpl := range All() {
		t.Run(string(tmpl.Intent), func(t *testing.T) {
			assert.NoError(t, sqlguard.CheckTemplate(tmpl.Body))
		})
	}
}

func TestTemplates_IdentityScoped(t *testing.T) {
	for _, tmpl := range All() {
		if tmpl.Intent == models.IntentMessageHistory {
			// Placeholder template; no backing table yet.
			continue
		}
		t.Run(string(tmpl.Intent), func(t *testing.T) {
			assert.Contains(t, tmpl.Body, "user_mobile LIKE $1")
			require.NotEmpty(t, tmpl.Params)
			assert.Equal(t, "mobile", tmpl.Params[0])
		})
	}
}

func TestTemplates_ShapeCarriesNoLiterals(t *testing.T) {
	for _, tmpl := range All() {
		t.Run(string(tmpl.Intent), func(t *testing.T) {
			assert.NotContains(t, tmpl.Shape, "$1")
			assert.False(t, strings.ContainsAny(tmpl.Shape, "'"))
		})
	}
}

func TestTemplates_SingleMarksDetailShapes(t *testing.T) {
	single := map[models.Intent]bool{}
	for _, tmpl := range All() {
		single[tmpl.Intent] = tmpl.Single
	}

	assert.True(t, single[models.IntentBookingStatus])
	assert.True(t, single[models.IntentQuerySummary])
	assert.True(t, single[models.IntentPaymentStatus])
	assert.True(t, single[models.IntentAdminInfo])
	assert.True(t, single[models.IntentMyProfile])

	assert.False(t, single[models.IntentListBookings])
	assert.False(t, single[models.IntentListPayments])
	assert.False(t, single[models.IntentPaymentSchedule])
}

// internal/models/models_test.go

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	assert.Equal(t, IntentBookingStatus, ParseIntent("booking_status"))
	assert.Equal(t, IntentGreeting, ParseIntent("greeting"))
	assert.Equal(t, IntentUnknown, ParseIntent("delete_everything"))
	assert.Equal(t, IntentUnknown, ParseIntent(""))
}

func TestIntentIsData(t *testing.T) {
	assert.True(t, IntentListPayments.IsData())
	assert.False(t, IntentGreeting.IsData())
	assert.False(t, IntentUnknown.IsData())
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeOperator, ParseMode("operator"))
	assert.Equal(t, ModeOperator, ParseMode(" OPERATOR "))
	assert.Equal(t, ModeCustomer, ParseMode("customer"))
	assert.Equal(t, ModeCustomer, ParseMode(""))
	assert.Equal(t, ModeCustomer, ParseMode("admin"))
}

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ten digits", "9876543210", "9876543210"},
		{"country code", "+919876543210", "9876543210"},
		{"spaces and dashes", " +91 98765 43210 ", "9876543210"},
		{"short number passes through", "43210", "43210"},
		{"global sentinel untouched", "ALL", "ALL"},
		{"letters dropped", "mob9876543210", "9876543210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIdentity(tt.in))
		})
	}
}

func TestMaskIdentity(t *testing.T) {
	assert.Equal(t, "******3210", MaskIdentity("9876543210"))
	assert.Equal(t, "ALL", MaskIdentity("ALL"))
	assert.Equal(t, "****", MaskIdentity("123"))
}

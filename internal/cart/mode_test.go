package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveMode(t *testing.T) {
	tests := []struct {
		name string
		in   ModeInputs
		want Mode
	}{
		{"estimate request overrides full permissions", ModeInputs{Requested: "estimate", CanCreateOrder: true, CanCreateEstimate: true}, ModeEstimate},
		{"estimate request without any permission", ModeInputs{Requested: "estimate"}, ModeEstimate},
		{"estimate request is case insensitive", ModeInputs{Requested: " Estimate ", CanCreateOrder: true}, ModeEstimate},
		{"estimate-only operator falls back", ModeInputs{CanCreateEstimate: true}, ModeEstimate},
		{"order permission keeps order", ModeInputs{CanCreateOrder: true, CanCreateEstimate: true}, ModeOrder},
		{"order-only operator", ModeInputs{CanCreateOrder: true}, ModeOrder},
		{"no permissions defaults to order", ModeInputs{}, ModeOrder},
		{"unknown request value is ignored", ModeInputs{Requested: "quote", CanCreateOrder: true}, ModeOrder},
		{"explicit order request with estimate-only operator", ModeInputs{Requested: "order", CanCreateEstimate: true}, ModeEstimate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveMode(tc.in))
		})
	}
}

func TestFieldValid(t *testing.T) {
	assert.True(t, FieldQuantity.Valid())
	assert.True(t, FieldUnitPrice.Valid())
	assert.True(t, FieldDiscountPercent.Valid())
	assert.False(t, Field("name").Valid())
}

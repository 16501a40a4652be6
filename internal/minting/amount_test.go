package minting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     uint64
		wantErr  bool
	}{
		{"whole", "1000", 6, 1_000_000_000, false},
		{"fraction", "1.5", 6, 1_500_000, false},
		{"smallest unit", "0.000001", 6, 1, false},
		{"zero", "0", 9, 0, false},
		{"no decimals", "42", 0, 42, false},
		{"too precise", "0.0000001", 6, 0, true},
		{"negative", "-1", 6, 0, true},
		{"max", "18446744073709551615", 0, ^uint64(0), false},
		{"overflow", "18446744073709551616", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(decimal.RequireFromString(tt.amount), tt.decimals)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToUIAmount(t *testing.T) {
	assert.Equal(t, "1.5", ToUIAmount(1_500_000, 6).String())
	assert.Equal(t, "1000", ToUIAmount(1_000_000_000, 6).String())
	assert.Equal(t, "0", ToUIAmount(0, 6).String())
}

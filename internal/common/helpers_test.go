package common

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		decimals uint8
		want     uint64
		err      error
	}{
		{"1.5", 9, 1_500_000_000, nil},
		{"0.024981836", 9, 24981836, nil},
		{"5", 9, 5 * LamportsPerSOL, nil},
		{" 2.50 ", 6, 2_500_000, nil},
		{".5", 2, 50, nil},
		{"1.", 2, 100, nil},
		{"7", 0, 7, nil},
		{"1.000000000000", 9, LamportsPerSOL, nil},
		{"0.0000000001", 9, 0, ErrTooManyDigits},
		{"", 9, 0, ErrEmptyAmount},
		{".", 9, 0, ErrInvalidAmount},
		{"-1", 9, 0, ErrInvalidAmount},
		{"1e9", 9, 0, ErrInvalidAmount},
		{"1.2.3", 9, 0, ErrInvalidAmount},
		{"18446744073709551616", 0, 0, ErrAmountOverflow},
		{"18446744074", 9, 0, ErrAmountOverflow},
	}
	for _, tt := range tests {
		got, err := ParseUnits(tt.in, tt.decimals)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatUnits(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.024981836", FormatUnits(24981836, 9))
	assert.Equal(t, "1.500000000", LamportsToSOL(1_500_000_000))
	assert.Equal(t, "0.000001", FormatUnits(1, 6))
	assert.Equal(t, "42", FormatUnits(42, 0))

	back, err := SOLToLamports(LamportsToSOL(123456789012))
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789012), back)
}

func TestAddUint64(t *testing.T) {
	t.Parallel()
	n, err := AddUint64(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	_, err = AddUint64(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	base := errors.New("bad")
	err := Invalid("recipient", base)
	assert.EqualError(t, err, "invalid recipient: bad")
	assert.ErrorIs(t, err, base)
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(base))
}

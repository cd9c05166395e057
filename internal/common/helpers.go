package common

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	SOLDecimals      = 9 // SOL has 9 decimals (lamports)
	LamportsPerSOL   = 1_000_000_000
	MaxTokenDecimals = 19 // 10^19 still fits a uint64 multiplier
)

var (
	ErrEmptyAmount    = errors.New("empty amount")
	ErrInvalidAmount  = errors.New("invalid decimal format")
	ErrTooManyDigits  = errors.New("too many fractional digits")
	ErrAmountOverflow = errors.New("amount overflows uint64")
)

// LamportsToSOL converts lamports to SOL string without float precision loss
func LamportsToSOL(lamports uint64) string {
	return FormatUnits(lamports, SOLDecimals)
}

// SOLToLamports converts SOL string to lamports without float precision loss
func SOLToLamports(sol string) (uint64, error) {
	return ParseUnits(sol, SOLDecimals)
}

// FormatUnits converts integer to decimal string by inserting decimal point
// Example: FormatUnits(24981836, 9) = "0.024981836"
func FormatUnits(value uint64, decimals uint8) string {
	s := strconv.FormatUint(value, 10)
	if decimals == 0 {
		return s
	}

	// Pad with leading zeros if needed
	if len(s) <= int(decimals) {
		s = strings.Repeat("0", int(decimals)-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - int(decimals)
	return s[:pos] + "." + s[pos:]
}

// ParseUnits converts decimal string to integer by removing decimal point
// Example: ParseUnits("0.024981836", 9) = 24981836
// More fractional digits than decimals is an error, never a silent truncation.
func ParseUnits(s string, decimals uint8) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}
	if decimals > MaxTokenDecimals {
		return 0, fmt.Errorf("unsupported decimals %d", decimals)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, ErrInvalidAmount
	}

	// Trailing zeros never change the value
	frac = strings.TrimRight(frac, "0")
	if len(frac) > int(decimals) {
		return 0, ErrTooManyDigits
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	if whole == "" {
		whole = "0"
	}
	n, err := strconv.ParseUint(whole+frac, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrAmountOverflow
		}
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// AddUint64 adds a and b, failing on overflow
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

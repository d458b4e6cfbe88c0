// Package num provides the numeric serialization rules for persisted rating fields.
package num

import (
	"math"
	"strconv"
)

// Round2 rounds to two decimal places, halves away from zero.
// Derived averages are stored with this rounding; running sums never are.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format2 serializes a value rounded to two decimal places. Trailing zeros
// are trimmed so the stored form round-trips through ParseFloat unchanged.
func Format2(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', -1, 64)
}

// FormatExact serializes a value at full round-trip precision. Running sums
// use this form so rounding error never compounds across updates.
func FormatExact(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Parse converts a stored numeric attribute back to a float64.
func Parse(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

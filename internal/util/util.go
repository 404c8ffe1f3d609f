// Package util provides numeric helpers shared by the reward engine and its collaborators.
package util

import "math"

// SafeDiv returns num/den, or 0 when den is zero or the result is not finite.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return Finite(num / den)
}

// Finite returns v, or 0 if v is NaN or infinite.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SqrtNonNeg returns the square root of v clamped at zero.
func SqrtNonNeg(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Sqrt(v)
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MergeSum adds every value of src into dst.
func MergeSum(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] += v
	}
}

package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Fraction returns part/total clamped to [0,1]. It is exactly 1 when
// part == total, and 1 for an empty total.
func Fraction[T constraints.Integer](part, total T) float64 {
	if total <= 0 || part >= total {
		return 1
	}
	return Clamp(float64(part)/float64(total), 0, 1)
}

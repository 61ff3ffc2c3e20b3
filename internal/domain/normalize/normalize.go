// Package normalize maps unbounded feature values into [0,1].
package normalize

import "math"

// LogNormalize compresses value against referenceMax on a log1p scale so
// large values saturate toward 1. Non-positive and NaN values map to 0,
// +Inf maps to 1. referenceMax must be positive whenever value is.
func LogNormalize(value, referenceMax float64) float64 {
	switch {
	case math.IsNaN(value), value <= 0:
		return 0
	case math.IsInf(value, 1):
		return 1
	}
	return math.Log1p(value) / math.Log1p(referenceMax)
}

package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckMatrix checks all values in a matrix for NaN or Inf.
// At most ten offending values are carried in the error.
func CheckMatrix(operation string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	var unstable []float64
	for i := 0; i < rows && len(unstable) < 10; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				unstable = append(unstable, v)
				if len(unstable) >= 10 {
					break
				}
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, 0)
	}
	return nil
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if denominator is zero, which is the zero_division=0 policy
// used by the classification metrics.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// StabilizeExp computes exp with protection against overflow.
func StabilizeExp(value float64) float64 {
	const maxExp = 700.0
	if value > maxExp {
		return math.Exp(maxExp)
	}
	if value < -maxExp {
		return 0
	}
	return math.Exp(value)
}

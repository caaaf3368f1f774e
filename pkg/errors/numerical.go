package errors

import (
	"math"
)

// CheckMatrix checks all values in a matrix for NaN or Inf and reports the
// first offending cell together with up to ten bad values.
func CheckMatrix(operation string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	var unstableValues []float64
	firstRow, firstCol := -1, -1

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				if firstRow < 0 {
					firstRow, firstCol = i, j
				}
				unstableValues = append(unstableValues, v)
				if len(unstableValues) >= 10 {
					return NewNumericalInstabilityError(operation, unstableValues, firstRow, firstCol)
				}
			}
		}
	}

	if len(unstableValues) > 0 {
		return NewNumericalInstabilityError(operation, unstableValues, firstRow, firstCol)
	}

	return nil
}

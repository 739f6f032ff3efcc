package geom

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Length returns the Euclidean distance between (x1, y1) and (x2, y2).
// Non-finite inputs propagate as NaN or Inf.
func Length(x1, y1, x2, y2 float64) float64 {
	return floats.Distance([]float64{x1, y1}, []float64{x2, y2}, 2)
}

// TotalLength sums the lengths of the given segments
func TotalLength(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	lengths := make([]float64, len(segments))
	for i, s := range segments {
		lengths[i] = s.Length()
	}
	return floats.Sum(lengths)
}

func snap(v, grid float64) float64 {
	r := math.Round(v/grid) * grid
	// Normalize negative zero so it keys identically to zero
	if r == 0 {
		return 0
	}
	return r
}

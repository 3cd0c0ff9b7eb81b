package kmeans

import (
	"math"
	"slices"
)

const (
	maxIterations = 300
	tolerance     = 1e-6
)

// OneDimKmeans splits one-dimensional data into a high and a low cluster
// (k=2) and reports, for each value, whether it belongs to the high one.
//
// The centers start at the minimum and the maximum. Each round assigns every
// value to the nearer center and moves the centers to the means of their
// clusters, until the midpoint between the centers stops moving.
//
// When every value is the same there is no second cluster and values are
// split at 0.5 instead.
func OneDimKmeans(averages []float64) []bool {
	if len(averages) == 0 {
		return nil
	}
	low, high := slices.Min(averages), slices.Max(averages)
	if low == high || math.IsNaN(low) || math.IsNaN(high) {
		return split(averages, .5)
	}

	var isHigh []bool
	for range maxIterations {
		threshold := (low + high) / 2
		isHigh = split(averages, threshold)

		var highs, lows AverageStore
		for i, v := range averages {
			if isHigh[i] {
				highs.Add(v)
			} else {
				lows.Add(v)
			}
		}
		low, high = lows.Average(), highs.Average()
		if math.Abs((low+high)/2-threshold) < tolerance {
			break
		}
	}
	return isHigh
}

func split(values []float64, threshold float64) []bool {
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v >= threshold
	}
	return out
}

package kmeans

import "math"

// AverageStore accumulates a running mean. It is not safe for concurrent
// use; every fold owns its stores.
type AverageStore struct {
	sum   float64
	count int
}

func (s *AverageStore) Add(value float64) {
	s.sum += value
	s.count++
}

// Average returns the mean of the added values, or NaN when nothing was added.
func (s *AverageStore) Average() float64 { return s.sum / float64(s.count) }

// Agreement returns |2*Average-1| for values in [0, 1]: 1 when every vote
// agrees and 0 for an even split.
func (s *AverageStore) Agreement() float64 {
	if s.count == 0 {
		return 0
	}
	return math.Abs(2*s.Average() - 1)
}

func (s *AverageStore) Count() int { return s.count }

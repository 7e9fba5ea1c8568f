package metric

import (
	"fmt"
)

// Series keeps the most recent samples of a run in a fixed capacity ring.  Once full, each new
// sample overwrites the oldest one.
type Series struct {
	count  int
	values []int
}

// Values returns a copy of the retained samples in temporal order from oldest to most recent.  Only
// recorded samples are returned, so the result is shorter than the capacity until the series fills.
func (s *Series) Values() []int {
	if s.count < len(s.values) {
		out := make([]int, s.count)
		copy(out, s.values[:s.count])
		return out
	}
	out := make([]int, 0, len(s.values))
	oldest := s.nextIndex()
	return append(append(out, s.values[oldest:]...), s.values[:oldest]...)
}

// Record adds a new sample to the series
func (s *Series) Record(k int) {
	s.values[s.nextIndex()] = k
	s.count++
}

// nextIndex returns the index of the oldest sample in the series to be overwritten by new data
func (s *Series) nextIndex() int {
	return s.count % len(s.values)
}

// NewSeries creates a new series with a capacity of cap
func NewSeries(cap int) (*Series, error) {
	if cap <= 0 {
		return nil, fmt.Errorf("series must be initialized with a capacity >= 1")
	}
	return &Series{values: make([]int, cap)}, nil
}

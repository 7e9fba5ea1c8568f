package stat

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/BTBurke/poisson/pkg/metric"
	"github.com/HdrHistogram/hdrhistogram-go"
)

// MaxTrackable is the largest sample a Summary will accept.  Knuth's algorithm is only used for
// small means, where a count this large is effectively impossible.
const MaxTrackable = 1 << 16

// histogramMax must stay above MaxTrackable: hdrhistogram may reject its own configured highest value
const histogramMax = 2 * MaxTrackable

// Summary accumulates Poisson samples and reports the statistics used to check a run: the sum, mean
// and max printed by the harness, plus the variance and dispersion index.  For a Poisson
// distribution the mean and variance are both lambda, so the dispersion index should be close to 1.
type Summary struct {
	count  int
	sum    int
	sumSq  float64
	max    int
	freq   map[int]int64
	hist   *hdrhistogram.Histogram
	recent *metric.Series
}

// SummaryOption applies options to construct a custom summary
type SummaryOption func(*Summary) error

// WithHistory retains the n most recent samples, available from Recent
func WithHistory(n int) SummaryOption {
	return func(s *Summary) error {
		series, err := metric.NewSeries(n)
		if err != nil {
			return fmt.Errorf("invalid summary history: %w", err)
		}
		s.recent = series
		return nil
	}
}

func NewSummary(opts ...SummaryOption) (*Summary, error) {
	s := &Summary{
		freq: make(map[int]int64),
		hist: hdrhistogram.New(1, histogramMax, 3),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to create summary: %w", err)
		}
	}
	return s, nil
}

// Record adds a sample.  Negative samples and samples above MaxTrackable are rejected and leave the
// summary unchanged.
func (s *Summary) Record(k int) error {
	if k < 0 || k > MaxTrackable {
		return fmt.Errorf("sample %d outside of trackable range [0, %d]", k, MaxTrackable)
	}
	if err := s.hist.RecordValue(int64(k)); err != nil {
		return fmt.Errorf("failed to record sample %d: %w", k, err)
	}
	s.count++
	s.sum += k
	s.sumSq += float64(k) * float64(k)
	if k > s.max {
		s.max = k
	}
	s.freq[k]++
	if s.recent != nil {
		s.recent.Record(k)
	}
	return nil
}

func (s *Summary) Count() int {
	return s.count
}

func (s *Summary) Sum() int {
	return s.sum
}

// Max returns the largest sample, or 0 if nothing has been recorded
func (s *Summary) Max() int {
	return s.max
}

// Mean returns the sample mean, the maximum likelihood estimate of lambda.  An empty summary has a
// mean of 0.
func (s *Summary) Mean() float64 {
	if s.count == 0 {
		return 0.0
	}
	return float64(s.sum) / float64(s.count)
}

// Variance returns the unbiased sample variance.  Fewer than two samples have a variance of 0.
func (s *Summary) Variance() float64 {
	if s.count < 2 {
		return 0.0
	}
	n := float64(s.count)
	v := (s.sumSq - float64(s.sum)*float64(s.sum)/n) / (n - 1)
	if v < 0 {
		return 0.0
	}
	return v
}

// Dispersion returns the index of dispersion, variance/mean.  It is 0 when the mean is 0.
func (s *Summary) Dispersion() float64 {
	m := s.Mean()
	if m == 0 {
		return 0.0
	}
	return s.Variance() / m
}

// Quantile returns the smallest sample value v such that a fraction q of samples are <= v.  q is
// in [0,1].
func (s *Summary) Quantile(q float64) int {
	return int(s.hist.ValueAtQuantile(q * 100))
}

// Frequencies returns a copy of the number of times each sample value was seen
func (s *Summary) Frequencies() map[int]int64 {
	out := make(map[int]int64, len(s.freq))
	for k, v := range s.freq {
		out[k] = v
	}
	return out
}

// Values returns the distinct sample values seen, in ascending order
func (s *Summary) Values() []int {
	out := make([]int, 0, len(s.freq))
	for k := range s.freq {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Recent returns the retained history of samples from oldest to newest.  It is nil unless the
// summary was created WithHistory.
func (s *Summary) Recent() []int {
	if s.recent == nil {
		return nil
	}
	return s.recent.Values()
}

// Metric will return every statistic in the summary keyed by name with a value=<statistic> metadata
// entry, plus a count for each observed sample value.
//
// Example: poisson_k[lambda=0.2 value=mean] 0.19876
//          poisson_k[k=1 lambda=0.2 value=frequency] 16301
func (s *Summary) Metric(name metric.Name) map[string]float64 {
	out := map[string]float64{
		name.With(map[string]string{"value": "count"}).String():      float64(s.Count()),
		name.With(map[string]string{"value": "sum"}).String():        float64(s.Sum()),
		name.With(map[string]string{"value": "mean"}).String():       s.Mean(),
		name.With(map[string]string{"value": "max"}).String():        float64(s.Max()),
		name.With(map[string]string{"value": "variance"}).String():   s.Variance(),
		name.With(map[string]string{"value": "dispersion"}).String(): s.Dispersion(),
	}
	for k, v := range s.freq {
		n := name.With(map[string]string{"value": "frequency", "k": strconv.Itoa(k)})
		out[n.String()] = float64(v)
	}
	return out
}

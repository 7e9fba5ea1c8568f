package poisson

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/BTBurke/poisson/pkg/metric"
	"github.com/BTBurke/poisson/pkg/rng"
	"github.com/BTBurke/poisson/pkg/stat"
	"github.com/go-logfmt/logfmt"
)

// reporter writes the samples of a run as they are drawn, followed by a summary
type reporter interface {
	Sample(k int) error
	Summary(s *stat.Summary) error
}

var _ reporter = &textReporter{}
var _ reporter = &logfmtReporter{}
var _ reporter = &jsonReporter{}

func newReporter(cfg *Config, w io.Writer, name metric.Name) reporter {
	switch cfg.Format {
	case FormatLogfmt:
		return &logfmtReporter{enc: logfmt.NewEncoder(w), name: name}
	case FormatJSON:
		return &jsonReporter{w: w, cfg: cfg}
	default:
		return &textReporter{w: w}
	}
}

// textReporter writes the classic poisson-test harness lines
type textReporter struct {
	w io.Writer
}

func (r *textReporter) Sample(k int) error {
	_, err := fmt.Fprintf(r.w, "k = %d\n", k)
	return err
}

func (r *textReporter) Summary(s *stat.Summary) error {
	_, err := fmt.Fprintf(r.w, "total of all k values = %d\nmean of k = %f\nmax value of k = %d\n", s.Sum(), s.Mean(), s.Max())
	return err
}

// logfmtReporter writes k=<k> for each sample, then one metric=<name> value=<v> record per summary
// value in sorted name order
type logfmtReporter struct {
	enc  *logfmt.Encoder
	name metric.Name
}

func (r *logfmtReporter) Sample(k int) error {
	if err := r.enc.EncodeKeyval("k", k); err != nil {
		return err
	}
	return r.enc.EndRecord()
}

func (r *logfmtReporter) Summary(s *stat.Summary) error {
	metrics := s.Metric(r.name)
	names := make([]string, 0, len(metrics))
	for n := range metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := r.enc.EncodeKeyvals("metric", n, "value", metrics[n]); err != nil {
			return err
		}
		if err := r.enc.EndRecord(); err != nil {
			return err
		}
	}
	return nil
}

// jsonReporter buffers samples and writes a single object once the run is complete
type jsonReporter struct {
	w       io.Writer
	cfg     *Config
	samples []int
}

type jsonReport struct {
	Lambda      float64       `json:"lambda"`
	Threshold   float64       `json:"threshold"`
	Seed        int64         `json:"seed"`
	Count       int           `json:"count"`
	Samples     []int         `json:"samples,omitempty"`
	Recent      []int         `json:"recent,omitempty"`
	Sum         int           `json:"sum"`
	Mean        float64       `json:"mean"`
	Max         int           `json:"max"`
	Variance    float64       `json:"variance"`
	Dispersion  float64       `json:"dispersion"`
	Frequencies map[int]int64 `json:"frequencies"`
}

func (r *jsonReporter) Sample(k int) error {
	r.samples = append(r.samples, k)
	return nil
}

func (r *jsonReporter) Summary(s *stat.Summary) error {
	report := jsonReport{
		Lambda:      r.cfg.Lambda,
		Threshold:   rng.Threshold(r.cfg.Lambda),
		Seed:        r.cfg.Seed,
		Count:       s.Count(),
		Samples:     r.samples,
		Recent:      s.Recent(),
		Sum:         s.Sum(),
		Mean:        s.Mean(),
		Max:         s.Max(),
		Variance:    s.Variance(),
		Dispersion:  s.Dispersion(),
		Frequencies: s.Frequencies(),
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

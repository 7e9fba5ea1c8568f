// Package poisson draws Poisson distributed counts with Knuth's algorithm and reports how closely
// the samples match the requested mean.  It is the library behind the poisson-test command.
package poisson

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/BTBurke/poisson/pkg/metric"
	"github.com/BTBurke/poisson/pkg/rng"
	"github.com/BTBurke/poisson/pkg/stat"
	"github.com/go-kit/log/level"
)

// MetricName is the base name for every summary value written by a run
const MetricName = "poisson_k"

// Harness draws a configured number of Poisson samples and writes each one and a summary
type Harness struct {
	Config *Config
}

// New prepares a run from the supplied options
func New(options ...ConfigOption) (*Harness, []error) {
	cfg, err := NewConfig(options...)
	if len(err) > 0 {
		return nil, err
	}
	return &Harness{Config: cfg}, nil
}

// Name returns the metric name for this run, tagged with lambda and seed
func (h *Harness) Name() metric.Name {
	return metric.NewName(MetricName, map[string]string{
		"lambda": strconv.FormatFloat(h.Config.Lambda, 'g', -1, 64),
		"seed":   strconv.FormatInt(h.Config.Seed, 10),
	})
}

// Run computes the threshold once for the configured lambda, draws Count samples and writes them to
// w in the configured format.  The summary is returned even when the run fails part way through so
// the caller can see how far it got.
func (h *Harness) Run(w io.Writer) (*stat.Summary, error) {
	cfg := h.Config
	logger := cfg.logger

	var summaryOpts []stat.SummaryOption
	if cfg.History > 0 {
		summaryOpts = append(summaryOpts, stat.WithHistory(cfg.History))
	}
	summary, err := stat.NewSummary(summaryOpts...)
	if err != nil {
		return nil, err
	}

	sampler := rng.NewPoissonRNG(cfg.Lambda, cfg.source, rng.WithMaxDraws(cfg.MaxDraws))
	rep := newReporter(cfg, w, h.Name())

	level.Debug(logger).Log("msg", "starting run", "lambda", cfg.Lambda, "threshold", sampler.Threshold(), "count", cfg.Count, "seed", cfg.Seed, "max_draws", cfg.MaxDraws)
	start := time.Now()

	for i := 0; i < cfg.Count; i++ {
		k, err := sampler.Next()
		if err != nil {
			level.Error(logger).Log("msg", "sample failed", "index", i, "err", err)
			return summary, fmt.Errorf("sample %d: %w", i, err)
		}
		if err := summary.Record(k); err != nil {
			return summary, fmt.Errorf("sample %d: %w", i, err)
		}
		if cfg.Quiet {
			continue
		}
		if err := rep.Sample(k); err != nil {
			return summary, fmt.Errorf("failed to write sample %d: %w", i, err)
		}
	}

	if err := rep.Summary(summary); err != nil {
		return summary, fmt.Errorf("failed to write summary: %w", err)
	}
	level.Debug(logger).Log("msg", "run complete", "samples", summary.Count(), "mean", summary.Mean(), "dispersion", summary.Dispersion(), "duration", time.Since(start))
	return summary, nil
}

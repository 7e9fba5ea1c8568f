package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/BTBurke/poisson/pkg/rng"
	"github.com/BTBurke/poisson/pkg/stat"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const (
	NumProcs  int     = 4
	Samples   int     = 100000
	MinLambda float64 = 0.05
	MaxLambda float64 = 2.0
	Step      float64 = 0.05
	BaseSeed  int64   = 5979229
)

type result struct {
	lambda     float64
	mean       float64
	dispersion float64
}

type results struct {
	mu  sync.Mutex
	val []result
}

func (r *results) record(res result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.val = append(r.val, res)
}

// newLogger writes logfmt to w, dropping debug lines unless verbose is set
func newLogger(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}

func main() {
	out := pflag.StringP("out", "o", "calibrate.txt", "file to write results to")
	verbose := pflag.BoolP("verbose", "v", false, "log the start of each lambda")
	pflag.Parse()

	logger := newLogger(os.Stderr, *verbose)

	res := &results{}
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(NumProcs)
	steps := int(math.Round((MaxLambda-MinLambda)/Step)) + 1
	for i := 0; i < steps; i++ {
		lambda := MinLambda + float64(i)*Step
		seed := BaseSeed + int64(i)
		g.Go(func() error {
			level.Debug(logger).Log("msg", "start", "lambda", lambda)
			r, err := calibrate(lambda, seed)
			if err != nil {
				return fmt.Errorf("lambda=%f: %w", lambda, err)
			}
			level.Info(logger).Log("msg", "result", "lambda", fmt.Sprintf("%1.2f", r.lambda), "mean", fmt.Sprintf("%1.5f", r.mean), "dispersion", fmt.Sprintf("%1.5f", r.dispersion))
			res.record(r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "calibration failed", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "finished", "elapsed", time.Since(start))

	if err := ioutil.WriteFile(*out, format(res.val), 0644); err != nil {
		level.Error(logger).Log("msg", "failed to write results", "file", *out, "err", err)
		os.Exit(1)
	}
}

// calibrate draws Samples values at lambda and reports the empirical mean and dispersion index,
// which should be close to lambda and 1 respectively
func calibrate(lambda float64, seed int64) (result, error) {
	s, err := stat.NewSummary()
	if err != nil {
		return result{}, err
	}
	r := rng.NewPoissonRNG(lambda, rng.NewUniform(seed))
	for j := 0; j < Samples; j++ {
		if err := s.Record(r.Int()); err != nil {
			return result{}, err
		}
	}
	return result{lambda: lambda, mean: s.Mean(), dispersion: s.Dispersion()}, nil
}

// format writes one "lambda mean dispersion" row per result in ascending lambda order
func format(val []result) []byte {
	sorted := make([]result, len(val))
	copy(sorted, val)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].lambda < sorted[j].lambda })

	var b bytes.Buffer
	for _, r := range sorted {
		b.WriteString(fmt.Sprintf("%f %f %f\n", r.lambda, r.mean, r.dispersion))
	}
	return b.Bytes()
}

package poisson

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/BTBurke/poisson/pkg/rng"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Format selects how a run is written
type Format string

const (
	// FormatText prints one "k = N" line per sample followed by a short summary
	FormatText   Format = "text"
	FormatLogfmt Format = "logfmt"
	FormatJSON   Format = "json"
)

const (
	defaultCount  = 100
	defaultLambda = 0.2
	// fixed default seed so runs without --seed are reproducible
	defaultSeed int64 = 5979229
)

// Config controls a sampling run
type Config struct {
	Count    int
	Lambda   float64
	Seed     int64
	MaxDraws int
	Format   Format
	Quiet    bool
	Verbose  bool
	History  int

	source rng.Uniform
	logger log.Logger
}

type ConfigOption func(c *Config) error

// NewConfig returns the default configuration with options applied.  Every option is applied and
// all errors are returned together.
func NewConfig(options ...ConfigOption) (*Config, []error) {
	c := &Config{
		Count:  defaultCount,
		Lambda: defaultLambda,
		Seed:   defaultSeed,
		Format: FormatText,
	}

	var errors []error
	for _, option := range options {
		if err := option(c); err != nil {
			errors = append(errors, err)
		}
	}
	if len(errors) > 0 {
		return nil, errors
	}

	if c.source == nil {
		c.source = rng.NewUniform(c.Seed)
	}
	if c.logger == nil {
		c.logger = newLogger(c.Verbose)
	}
	return c, nil
}

func newLogger(verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowWarn())
}

// Count sets the number of samples to draw
func Count(n string) ConfigOption {
	return func(c *Config) error {
		count, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("could not convert num to integer: %s", n)
		}
		if count < 0 {
			return fmt.Errorf("num must be >= 0, got %d", count)
		}
		c.Count = count
		return nil
	}
}

// Lambda sets the mean of the distribution.  It must be finite and >= 0.
func Lambda(l string) ConfigOption {
	return func(c *Config) error {
		lambda, err := strconv.ParseFloat(l, 64)
		if err != nil {
			return fmt.Errorf("could not convert lambda to a number: %s", l)
		}
		if math.IsNaN(lambda) || math.IsInf(lambda, 0) || lambda < 0 {
			return fmt.Errorf("lambda must be a finite number >= 0, got %s", l)
		}
		c.Lambda = lambda
		return nil
	}
}

// Seed sets the seed of the default uniform source
func Seed(s string) ConfigOption {
	return func(c *Config) error {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("could not convert seed to integer: %s", s)
		}
		c.Seed = seed
		return nil
	}
}

// MaxDraws bounds the uniform draws used for a single sample.  Zero means unbounded.
func MaxDraws(n string) ConfigOption {
	return func(c *Config) error {
		draws, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("could not convert max-draws to integer: %s", n)
		}
		if draws < 0 {
			return fmt.Errorf("max-draws must be >= 0, got %d", draws)
		}
		c.MaxDraws = draws
		return nil
	}
}

// History sets how many of the most recent samples are kept in a JSON report when per-sample
// output is suppressed.  Zero keeps none.
func History(n string) ConfigOption {
	return func(c *Config) error {
		hist, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("could not convert history to integer: %s", n)
		}
		if hist < 0 {
			return fmt.Errorf("history must be >= 0, got %d", hist)
		}
		c.History = hist
		return nil
	}
}

// OutputFormat selects text, logfmt or json output
func OutputFormat(f string) ConfigOption {
	return func(c *Config) error {
		switch format := Format(strings.ToLower(f)); format {
		case FormatText, FormatLogfmt, FormatJSON:
			c.Format = format
			return nil
		default:
			return fmt.Errorf("unknown output format: %s", f)
		}
	}
}

// Quiet suppresses the per-sample lines and only writes the summary
func Quiet() ConfigOption {
	return func(c *Config) error {
		c.Quiet = true
		return nil
	}
}

// Verbose enables debug logging on stderr
func Verbose() ConfigOption {
	return func(c *Config) error {
		c.Verbose = true
		return nil
	}
}

// WithSource replaces the seeded default uniform source.  Seed is ignored when a source is set.
func WithSource(src rng.Uniform) ConfigOption {
	return func(c *Config) error {
		if src == nil {
			return fmt.Errorf("uniform source must not be nil")
		}
		c.source = src
		return nil
	}
}

// WithLogger replaces the default stderr logger
func WithLogger(logger log.Logger) ConfigOption {
	return func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

package poisson

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sort"
	"strconv"

	"github.com/go-yaml/yaml"
	"github.com/spf13/pflag"
)

type options struct {
	options []ConfigOption
	err     error
}

// OptionError is returned when a flag or config file value is recognized but invalid.  Any other
// parse error means the command line itself was malformed, such as an unknown flag.
type OptionError struct {
	Name string
	Err  error
}

func (e OptionError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Name, e.Err)
}

func (e OptionError) Unwrap() error {
	return e.Err
}

// ParseCommandLine configures the harness from command line options or from a YAML configuration
// file passed with the -c flag.  Usage is written to stdout.
func ParseCommandLine() ([]ConfigOption, *pflag.FlagSet, error) {
	pf := createFlagSet(os.Stdout)
	opts, err := parse(os.Args[1:], pf)
	return opts, pf, err
}

func parse(args []string, pf *pflag.FlagSet) ([]ConfigOption, error) {
	options := options{}
	if err := pf.ParseAll(args, parseFlag(&options)); err != nil {
		return options.options, err
	}
	return options.options, options.err
}

func createFlagSet(out io.Writer) *pflag.FlagSet {
	pf := pflag.NewFlagSet("poisson-test", pflag.ContinueOnError)
	pf.SetOutput(out)
	pf.Usage = func() {
		fmt.Fprintf(out, "poisson-test [options]\n\n  Generate some Poisson-distributed numbers for specified lambda\n\n")
		fmt.Fprintf(out, "%s\n", pf.FlagUsagesWrapped(80))
	}

	pf.IntP("num", "n", defaultCount, "number of numbers to generate")
	pf.Float64P("lambda", "l", defaultLambda, "lambda (= mean and variance)")
	pf.Int64("seed", defaultSeed, "seed for the uniform random source")
	pf.Int("max-draws", 0, "fail if a single sample needs more than this many uniform draws (0 = unbounded)")
	pf.String("format", string(FormatText), "output format: text, logfmt or json")
	pf.Int("history", 0, "number of most recent samples to include in quiet json output")
	pf.BoolP("quiet", "q", false, "only print the summary")
	pf.BoolP("verbose", "v", false, "log debug information to stderr")
	pf.StringP("config", "c", "", "use yaml configuration file")

	return pf
}

func parseFlag(o *options) func(*pflag.Flag, string) error {
	return func(flag *pflag.Flag, value string) error {
		switch flag.Name {
		case "config":
			opts, err := parseFromFile(value)
			if err != nil {
				o.err = err
				return err
			}
			o.options = append(o.options, opts...)
		default:
			option, err := handleOption(flag.Name, value)
			if err != nil {
				o.err = err
				return err
			}
			if option != nil {
				o.options = append(o.options, option)
			}
		}
		return nil
	}
}

// handleOption converts a named flag value to a config option.  A boolean flag set to false returns
// a nil option.
func handleOption(name string, value string) (ConfigOption, error) {
	switch name {
	case "num":
		return Count(value), nil
	case "lambda":
		return Lambda(value), nil
	case "seed":
		return Seed(value), nil
	case "max-draws":
		return MaxDraws(value), nil
	case "format":
		return OutputFormat(value), nil
	case "history":
		return History(value), nil
	case "quiet":
		return boolOption(name, value, Quiet())
	case "verbose":
		return boolOption(name, value, Verbose())
	default:
		return nil, fmt.Errorf("unknown option: %s", name)
	}
}

func boolOption(name string, value string, opt ConfigOption) (ConfigOption, error) {
	if value == "" {
		return opt, nil
	}
	set, err := strconv.ParseBool(value)
	if err != nil {
		return nil, OptionError{Name: name, Err: err}
	}
	if !set {
		return nil, nil
	}
	return opt, nil
}

func parseFromFile(fpath string) ([]ConfigOption, error) {
	var options []ConfigOption
	data, err := ioutil.ReadFile(fpath)
	if err != nil {
		return options, OptionError{Name: "config", Err: err}
	}

	cfg := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return options, OptionError{Name: "config", Err: err}
	}

	// apply keys in a stable order so errors are reproducible
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var value string
		switch v := cfg[k].(type) {
		case string:
			value = v
		case int:
			value = strconv.Itoa(v)
		case int64:
			value = strconv.FormatInt(v, 10)
		case float64:
			value = strconv.FormatFloat(v, 'g', -1, 64)
		case bool:
			value = strconv.FormatBool(v)
		default:
			return options, OptionError{Name: "config", Err: fmt.Errorf("could not process config key %s, unknown type", k)}
		}
		if k == "config" {
			return options, OptionError{Name: "config", Err: fmt.Errorf("config files can not be nested")}
		}
		opt, err := handleOption(k, value)
		if err != nil {
			return options, OptionError{Name: "config", Err: err}
		}
		if opt != nil {
			options = append(options, opt)
		}
	}
	return options, nil
}

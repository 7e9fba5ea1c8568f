package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BTBurke/poisson"
	"github.com/spf13/pflag"
)

func main() {

	opts, pf, err := poisson.ParseCommandLine()
	if err != nil {
		var oe poisson.OptionError
		switch {
		case errors.Is(err, pflag.ErrHelp):
			// usage has already been printed
			os.Exit(0)
		case errors.As(err, &oe):
			fmt.Printf("Could not parse configuration: %s\n\nUse poisson-test --help for options\n", err)
			os.Exit(1)
		default:
			// unrecognized options print usage and exit cleanly
			pf.Usage()
			os.Exit(0)
		}
	}

	h, errs := poisson.New(opts...)
	if len(errs) > 0 {
		fmt.Println("Error in config:")
		for _, e := range errs {
			fmt.Println(e)
		}
		os.Exit(1)
	}

	if _, err := h.Run(os.Stdout); err != nil {
		fmt.Println("Run error:", err)
		os.Exit(1)
	}

	os.Exit(0)
}

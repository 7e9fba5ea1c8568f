package rng

import (
	"errors"
	"fmt"
)

// ErrDrawLimit is matched by errors.Is for any DrawLimitError
var ErrDrawLimit = errors.New("poisson draw limit exceeded")

// DrawLimitError is returned by a bounded sampler when the running product is still above the
// threshold after the allowed number of uniform draws.  This usually means the threshold is
// outside (0,1] or the uniform source is degenerate.
type DrawLimitError struct {
	Limit     int
	Threshold float64
}

func (e *DrawLimitError) Error() string {
	return fmt.Sprintf("%s: no result after %d draws with threshold %g", ErrDrawLimit, e.Limit, e.Threshold)
}

func (e *DrawLimitError) Is(target error) bool {
	return target == ErrDrawLimit
}

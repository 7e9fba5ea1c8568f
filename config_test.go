package poisson

import (
	"testing"

	"github.com/BTBurke/poisson/pkg/rng"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c, errs := NewConfig()
	require.Empty(t, errs)
	assert.Equal(t, 100, c.Count)
	assert.Equal(t, 0.2, c.Lambda)
	assert.Equal(t, int64(5979229), c.Seed)
	assert.Equal(t, 0, c.MaxDraws)
	assert.Equal(t, FormatText, c.Format)
	assert.False(t, c.Quiet)
	assert.NotNil(t, c.source)
	assert.NotNil(t, c.logger)
}

func TestConfigOptions(t *testing.T) {
	src := rng.Sequence(0.5)
	c, errs := NewConfig(Count("10"), Lambda("1.5"), Seed("-3"), MaxDraws("40"), OutputFormat("JSON"), History("5"), Quiet(), Verbose(), WithSource(src), WithLogger(log.NewNopLogger()))
	require.Empty(t, errs)
	assert.Equal(t, 10, c.Count)
	assert.Equal(t, 1.5, c.Lambda)
	assert.Equal(t, int64(-3), c.Seed)
	assert.Equal(t, 40, c.MaxDraws)
	assert.Equal(t, FormatJSON, c.Format)
	assert.Equal(t, 5, c.History)
	assert.True(t, c.Quiet)
	assert.True(t, c.Verbose)
	assert.Equal(t, 0.5, c.source.Float64())
}

func TestConfigErrors(t *testing.T) {
	tt := []struct {
		name string
		opt  ConfigOption
	}{
		{name: "count not a number", opt: Count("many")},
		{name: "negative count", opt: Count("-1")},
		{name: "lambda not a number", opt: Lambda("fast")},
		{name: "negative lambda", opt: Lambda("-0.2")},
		{name: "NaN lambda", opt: Lambda("NaN")},
		{name: "infinite lambda", opt: Lambda("+Inf")},
		{name: "seed not a number", opt: Seed("abc")},
		{name: "negative max draws", opt: MaxDraws("-2")},
		{name: "negative history", opt: History("-1")},
		{name: "unknown format", opt: OutputFormat("xml")},
		{name: "nil source", opt: WithSource(nil)},
		{name: "nil logger", opt: WithLogger(nil)},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c, errs := NewConfig(tc.opt)
			assert.Nil(t, c)
			assert.Len(t, errs, 1)
		})
	}
}

func TestConfigCollectsAllErrors(t *testing.T) {
	_, errs := NewConfig(Count("x"), Lambda("-1"), OutputFormat("xml"))
	assert.Len(t, errs, 3)
}

func TestLambdaZeroAllowed(t *testing.T) {
	c, errs := NewConfig(Lambda("0"))
	require.Empty(t, errs)
	assert.Equal(t, 0.0, c.Lambda)
}

package metrics

import (
	"errors"
	"testing"

	"github.com/delaneyj/coiled"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(WithRegistry(reg), WithNamespace("test")), reg
}

func TestInstrumentCountsNotifications(t *testing.T) {
	c, _ := newTestCollector(t)

	a := coiled.NewAtom("count", 0)
	d := Instrument[int](c, a)

	require.NoError(t, a.Update(1))
	require.NoError(t, a.Update(1))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.notifications.WithLabelValues("count", "atom")))

	d.Disconnect()
	require.NoError(t, a.Update(2))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.notifications.WithLabelValues("count", "atom")))
}

func TestInstrumentTracksDependencies(t *testing.T) {
	c, _ := newTestCollector(t)

	flag := coiled.NewAtom("flag", false)
	a := coiled.NewAtom("a", 1)
	b := coiled.NewAtom("b", 2)
	s := coiled.MustSelector("pick", func(ctx *coiled.Context) (int, error) {
		if coiled.Get[bool](ctx, flag) {
			return coiled.Get[int](ctx, b), nil
		}
		return coiled.Get[int](ctx, a), nil
	})
	Instrument[int](c, s)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.dependencies.WithLabelValues("pick")))

	require.NoError(t, flag.Update(true))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.dependencies.WithLabelValues("pick")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.notifications.WithLabelValues("pick", "selector")))
}

func TestTimed(t *testing.T) {
	c, reg := newTestCollector(t)
	boom := errors.New("boom")

	a := coiled.NewAtom("a", 1)
	s, err := coiled.NewSelector("odd", Timed(c, "odd", func(ctx *coiled.Context) (int, error) {
		v := coiled.Get[int](ctx, a)
		if v%2 == 0 {
			return 0, boom
		}
		return v, nil
	}))
	require.NoError(t, err)

	require.NoError(t, a.Update(3))
	require.ErrorIs(t, a.Update(4), boom)
	assert.Equal(t, 3, s.Snapshot())

	assert.Equal(t, 2.0, testutil.ToFloat64(c.evaluations.WithLabelValues("odd", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.evaluations.WithLabelValues("odd", "error")))

	count, err := testutil.GatherAndCount(reg, "test_evaluation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDefaultsAndOptions(t *testing.T) {
	config := defaultConfig()
	for _, opt := range []Option{
		WithNamespace("ns"),
		WithSubsystem("sub"),
		WithConstLabels(prometheus.Labels{"app": "demo"}),
		WithBuckets([]float64{1, 2}),
	} {
		opt(&config)
	}
	assert.Equal(t, "ns", config.Namespace)
	assert.Equal(t, "sub", config.Subsystem)
	assert.Equal(t, prometheus.Labels{"app": "demo"}, config.ConstLabels)
	assert.Equal(t, []float64{1, 2}, config.Buckets)
	assert.Equal(t, prometheus.DefaultRegisterer, config.Registry)
}

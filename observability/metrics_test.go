package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestAPIMetricsObserve(t *testing.T) {
	m := newAPIMetrics()
	m.Observe("/v1/world", 200, time.Millisecond)
	m.Observe("/v1/world", 404, time.Millisecond)
	m.RecordThrottle("")

	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/v1/world", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/v1/world", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/v1/world", "404")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.throttles.WithLabelValues("unspecified")))
}

func TestEventMetrics(t *testing.T) {
	m := newEventMetrics()
	m.RecordEvent(" World.Spirit.Claimed ")
	m.RecordEvent("")
	require.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("world.spirit.claimed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("unknown")))
}

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type WorldMetrics struct {
	calls     *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	era       prometheus.Gauge
	inventory *prometheus.GaugeVec
	preorders *prometheus.GaugeVec
	feeds     prometheus.Counter
	hatches   prometheus.Counter
}

var (
	worldOnce     sync.Once
	worldRegistry *WorldMetrics
)

// World returns the process wide sale and incubation metrics, registering
// them with the default prometheus registry on first use.
func World() *WorldMetrics {
	worldOnce.Do(func() {
		worldRegistry = NewWorld()
		prometheus.MustRegister(worldRegistry.Collectors()...)
	})
	return worldRegistry
}

// NewWorld builds an unregistered metrics set.
func NewWorld() *WorldMetrics {
	return &WorldMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shell",
			Name:      "calls_total",
			Help:      "Dispatched calls segmented by call name and result label.",
		}, []string{"call", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shell",
			Name:      "call_duration_seconds",
			Help:      "Latency of dispatched calls including commit.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),
		era: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shell",
			Name:      "era",
			Help:      "Current world era.",
		}),
		inventory: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "shell",
			Name:      "inventory_for_sale",
			Help:      "Origin of shells still for sale by tier and race.",
		}, []string{"tier", "race"}),
		preorders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "shell",
			Name:      "preorders",
			Help:      "Preorders awaiting a lottery result.",
		}, []string{"status"}),
		feeds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shell",
			Name:      "feeds_total",
			Help:      "Accepted origin of shell feedings.",
		}),
		hatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shell",
			Name:      "hatches_total",
			Help:      "Origin of shells hatched into awakened shells.",
		}),
	}
}

// Collectors lists every collector of the set for registration.
func (m *WorldMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.calls, m.latency, m.era, m.inventory, m.preorders, m.feeds, m.hatches}
}

func (m *WorldMetrics) ObserveCall(call, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if call == "" {
		call = "unknown"
	}
	if result == "" {
		result = "ok"
	}
	m.calls.WithLabelValues(call, result).Inc()
	m.latency.WithLabelValues(call).Observe(elapsed.Seconds())
}

func (m *WorldMetrics) SetEra(era uint64) {
	if m == nil {
		return
	}
	m.era.Set(float64(era))
}

func (m *WorldMetrics) SetInventory(tier, race string, forSale uint32) {
	if m == nil {
		return
	}
	m.inventory.WithLabelValues(tier, race).Set(float64(forSale))
}

func (m *WorldMetrics) SetPendingPreorders(count int) {
	if m == nil {
		return
	}
	m.preorders.WithLabelValues("pending").Set(float64(count))
}

func (m *WorldMetrics) IncFeeds() {
	if m == nil {
		return
	}
	m.feeds.Inc()
}

func (m *WorldMetrics) IncHatches() {
	if m == nil {
		return
	}
	m.hatches.Inc()
}

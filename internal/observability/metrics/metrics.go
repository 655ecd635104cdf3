package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	finalizeTotal     *prometheus.CounterVec
	cacheLookupsTotal *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		finalizeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiocan",
			Subsystem: "bookings",
			Name:      "finalize_total",
			Help:      "Total booking finalization attempts by outcome",
		}, []string{"outcome"}),
		cacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisiocan",
			Subsystem: "availability",
			Name:      "cache_lookups_total",
			Help:      "Availability cache lookups by result",
		}, []string{"result"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fisiocan",
			Subsystem: "availability",
			Name:      "generation_latency_seconds",
			Help:      "Latency of slot generation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"audience"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.finalizeTotal, m.cacheLookupsTotal, m.generationLatency)
	return m
}

// ObserveFinalize implements bookings.FinalizerMetrics.
func (m *BookingMetrics) ObserveFinalize(outcome string) {
	if m == nil {
		return
	}
	m.finalizeTotal.WithLabelValues(outcome).Inc()
}

// ObserveCache implements availability.CacheMetrics.
func (m *BookingMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveGeneration implements schedule.GeneratorMetrics.
func (m *BookingMetrics) ObserveGeneration(audience string, seconds float64) {
	if m == nil {
		return
	}
	m.generationLatency.WithLabelValues(audience).Observe(seconds)
}

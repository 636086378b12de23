package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheLookups    *prometheus.CounterVec
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	alertsTotal     *prometheus.CounterVec
	indicatorValue  *prometheus.GaugeVec
	lastPrice       *prometheus.GaugeVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketfeed_cache_lookups_total",
				Help: "Cache lookups by operation and result (hit or miss)",
			},
			[]string{"operation", "result"},
		),
		upstreamTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketfeed_upstream_requests_total",
				Help: "Requests made to upstream data vendors",
			},
			[]string{"source", "operation", "result"},
		),
		upstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketfeed_upstream_request_duration_seconds",
				Help:    "Duration of upstream vendor requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "operation"},
		),
		alertsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketfeed_alerts_total",
				Help: "Alerts generated by severity",
			},
			[]string{"type", "severity"},
		),
		indicatorValue: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketfeed_indicator_value",
				Help: "Last observed value of an economic indicator",
			},
			[]string{"symbol"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketfeed_last_price",
				Help: "Last fetched price for a ticker",
			},
			[]string{"ticker"},
		),
	}
}

// RecordCacheLookup records a cache hit or miss for an operation.
func (r *Recorder) RecordCacheLookup(operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(operation, result).Inc()
}

// RecordUpstream records one upstream request with its outcome and latency.
func (r *Recorder) RecordUpstream(source, operation string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.upstreamTotal.WithLabelValues(source, operation, result).Inc()
	r.upstreamLatency.WithLabelValues(source, operation).Observe(d.Seconds())
}

// RecordAlert records an emitted alert.
func (r *Recorder) RecordAlert(kind, severity string) {
	r.alertsTotal.WithLabelValues(kind, severity).Inc()
}

// RecordIndicator records the latest value of an economic series.
func (r *Recorder) RecordIndicator(symbol string, value float64) {
	r.indicatorValue.WithLabelValues(symbol).Set(value)
}

// RecordLastPrice records the last price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records screening and HTTP metrics on its own registry.
// A nil *Recorder is valid and records nothing.
// ⭐ SSOT: 모든 메트릭 정의는 여기서만
type Recorder struct {
	registry *prometheus.Registry

	tickers        *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	flags          *prometheus.CounterVec
	tickerDuration prometheus.Histogram
	batches        *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Recorder with a fresh registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		tickers: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supersignal_tickers_screened_total",
				Help: "Tickers screened, by outcome",
			},
			[]string{"outcome"},
		),
		sourceFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supersignal_source_failures_total",
				Help: "Failed provider fetches",
			},
			[]string{"source", "kind"},
		),
		flags: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supersignal_flags_total",
				Help: "Risk flags raised",
			},
			[]string{"kind", "severity"},
		),
		tickerDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "supersignal_ticker_duration_seconds",
				Help:    "Time to screen a single ticker",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
		),
		batches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supersignal_batches_total",
				Help: "Batches screened, by outcome",
			},
			[]string{"outcome"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supersignal_http_requests_total",
				Help: "HTTP requests served",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "supersignal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// Registry exposes the underlying registry for tests and custom collectors
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// TickerScreened counts one finished ticker ("ok", "failed", "incomplete")
func (r *Recorder) TickerScreened(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.tickers.WithLabelValues(outcome).Inc()
	r.tickerDuration.Observe(d.Seconds())
}

// SourceFailure counts one failed provider fetch
func (r *Recorder) SourceFailure(source, kind string) {
	if r == nil {
		return
	}
	r.sourceFailures.WithLabelValues(source, kind).Inc()
}

// Flag counts one raised risk flag
func (r *Recorder) Flag(kind, severity string) {
	if r == nil {
		return
	}
	r.flags.WithLabelValues(kind, severity).Inc()
}

// BatchFinished counts one finished batch
func (r *Recorder) BatchFinished(outcome string) {
	if r == nil {
		return
	}
	r.batches.WithLabelValues(outcome).Inc()
}

// HTTPRequest records one served request
func (r *Recorder) HTTPRequest(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

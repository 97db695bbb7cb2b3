// Package metrics exposes prometheus counters for one dnsdbq invocation:
// requests issued, records delivered, and bytes read off the wire. At
// diagnostic verbosity 2 (-d -d) a one-line summary is also printed to
// standard error; "-g" (graveled) suppresses that line even when otherwise
// enabled.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics tracks counters for a single run, each registered against its own
// registry so concurrent invocations (and tests) never collide on the
// default global registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   prometheus.Counter
	recordsTotal    prometheus.Counter
	bytesTotal      prometheus.Counter
	errorsTotal     prometheus.Counter
	requestDuration prometheus.Histogram

	// Plain atomics back the stderr summary line so it never needs to
	// read counter internals back out of the prometheus client.
	requests atomic.Int64
	records  atomic.Int64
	bytes    atomic.Int64
	errors   atomic.Int64
}

// New builds a Metrics instance with all counters registered.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dnsdbq_requests_total",
		Help: "Total backend HTTP requests issued.",
	})
	m.recordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dnsdbq_records_total",
		Help: "Total passive-DNS records delivered to a presenter.",
	})
	m.bytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dnsdbq_bytes_total",
		Help: "Total response bytes read from backend transfers.",
	})
	m.errorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dnsdbq_transport_errors_total",
		Help: "Total transport-level failures observed by the I/O engine.",
	})
	m.requestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dnsdbq_request_duration_seconds",
		Help:    "Backend request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	m.registry.MustRegister(m.requestsTotal, m.recordsTotal, m.bytesTotal, m.errorsTotal, m.requestDuration)
	return m
}

// ObserveRequest records one completed backend request's duration.
func (m *Metrics) ObserveRequest(d time.Duration) {
	m.requestsTotal.Inc()
	m.requestDuration.Observe(d.Seconds())
	m.requests.Add(1)
}

// AddRecords counts n records delivered to a presenter.
func (m *Metrics) AddRecords(n int) {
	if n <= 0 {
		return
	}
	m.recordsTotal.Add(float64(n))
	m.records.Add(int64(n))
}

// AddBytes counts n bytes read off the wire for a transfer.
func (m *Metrics) AddBytes(n int64) {
	if n <= 0 {
		return
	}
	m.bytesTotal.Add(float64(n))
	m.bytes.Add(n)
}

// AddTransportError counts one non-success transport completion, per §7's
// taxonomy of errors the I/O engine collects without aborting the run.
func (m *Metrics) AddTransportError() {
	m.errorsTotal.Inc()
	m.errors.Add(1)
}

// Summary renders the one-line stderr digest printed at -d -d, or "" if
// graveled is set (the -g flag suppresses the final record-count summary).
func (m *Metrics) Summary(graveled bool) string {
	if graveled {
		return ""
	}
	return fmt.Sprintf(
		"requests=%d records=%d bytes=%d errors=%d",
		m.requests.Load(), m.records.Load(), m.bytes.Load(), m.errors.Load(),
	)
}

// Handler returns an http.Handler serving this instance's counters in the
// Prometheus exposition format, for callers that also want a scrape
// endpoint rather than (or in addition to) the stderr summary.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a /metrics scrape endpoint on addr in the background and
// returns immediately; it never blocks the run it's instrumenting. Errors
// from the listener (other than a clean shutdown) are logged, not returned,
// since by the time one would surface the query this process was invoked
// for has typically already finished.
func (m *Metrics) Serve(addr string, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
}

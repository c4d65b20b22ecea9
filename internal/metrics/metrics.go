// Package metrics collects Prometheus metrics for availability checks and
// exposes them over HTTP.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vnykmshr/namecheck/internal/domain"
)

const namespace = "namecheck"

// Collector implements domain.MetricsRecorder on top of Prometheus.
type Collector struct {
	checks           *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
	retriesExhausted *prometheus.CounterVec
	requestErrors    *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	batches          prometheus.Counter
	namesChecked     prometheus.Counter
	recordsMerged    prometheus.Counter
}

var _ domain.MetricsRecorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Availability verdicts by source and result.",
		}, []string{"source", "available"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_status_total",
			Help:      "API responses by source and status code.",
		}, []string{"source", "status_code"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Rate-limited API responses.",
		}, []string{"source"}),
		retriesExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_exhausted_total",
			Help:      "Checks that ran out of retry budget.",
		}, []string{"source"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Transport failures and malformed API responses.",
		}, []string{"source"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches processed.",
		}),
		namesChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "names_checked_total",
			Help:      "Candidate names processed.",
		}),
		recordsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_merged_total",
			Help:      "Records merged into the result store.",
		}),
	}

	reg.MustRegister(
		c.checks,
		c.httpStatus,
		c.rateLimited,
		c.retriesExhausted,
		c.requestErrors,
		c.latency,
		c.batches,
		c.namesChecked,
		c.recordsMerged,
	)

	return c
}

// RecordVerdict counts one availability verdict by source and outcome.
func (c *Collector) RecordVerdict(source domain.Source, available bool) {
	c.checks.WithLabelValues(string(source), strconv.FormatBool(available)).Inc()
}

// RecordHTTPStatus counts one API response by status code.
func (c *Collector) RecordHTTPStatus(source domain.Source, statusCode int) {
	c.httpStatus.WithLabelValues(string(source), strconv.Itoa(statusCode)).Inc()
}

// RecordRateLimited counts one rate-limited API response.
func (c *Collector) RecordRateLimited(source domain.Source) {
	c.rateLimited.WithLabelValues(string(source)).Inc()
}

// RecordRetriesExhausted counts a check that ran out of retries.
func (c *Collector) RecordRetriesExhausted(source domain.Source) {
	c.retriesExhausted.WithLabelValues(string(source)).Inc()
}

// RecordRequestError counts a request that failed before a response arrived.
func (c *Collector) RecordRequestError(source domain.Source) {
	c.requestErrors.WithLabelValues(string(source)).Inc()
}

// RecordLatency observes the duration of one API request.
func (c *Collector) RecordLatency(source domain.Source, d time.Duration) {
	c.latency.WithLabelValues(string(source)).Observe(d.Seconds())
}

// RecordBatch counts one processed batch of names.
func (c *Collector) RecordBatch(names int) {
	c.batches.Inc()
	c.namesChecked.Add(float64(names))
}

// RecordMerged counts records merged into the result store.
func (c *Collector) RecordMerged(records int) {
	c.recordsMerged.Add(float64(records))
}

// NewRouter serves /metrics from gatherer and a /healthz liveness probe.
func NewRouter(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// Server exposes the metrics router while a run is in progress.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *slog.Logger
}

// Listen binds addr and returns a server ready to Serve.
func Listen(addr string, gatherer prometheus.Gatherer, logger *slog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		srv: &http.Server{
			Handler:           NewRouter(gatherer),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		ln:     ln,
		logger: logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve handles requests until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Metrics server listening", "addr", s.Addr())
		errCh <- s.srv.Serve(s.ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Metrics server stopped")
	return nil
}

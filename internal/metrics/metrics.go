// Package metrics exposes Prometheus collectors for the link checker.
package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	checksTotal       *prometheus.CounterVec
	invalidTotal      prometheus.Counter
	startDelaySeconds prometheus.Histogram
	inFlight          prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		checksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkcheck_checks_total",
				Help: "Total number of links checked, labeled by HTTP status class.",
			},
			[]string{"status_class"},
		)

		invalidTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "linkcheck_invalid_total",
				Help: "Total number of links that resolved to an invalid verdict.",
			},
		)

		startDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkcheck_start_delay_seconds",
				Help:    "Histogram of delays imposed by the request-start gate.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		)

		inFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "linkcheck_in_flight",
				Help: "Number of resolutions currently in flight.",
			},
		)
	})
}

// CountCheck records one terminal verdict.
func CountCheck(statusClass string, valid bool) {
	Init()
	checksTotal.WithLabelValues(statusClass).Inc()
	if !valid {
		invalidTotal.Inc()
	}
}

// ObserveStartDelay records the wait imposed by the start gate.
func ObserveStartDelay(d time.Duration) {
	Init()
	startDelaySeconds.Observe(d.Seconds())
}

// IncInFlight marks one resolution as started.
func IncInFlight() {
	Init()
	inFlight.Inc()
}

// DecInFlight marks one resolution as finished.
func DecInFlight() {
	Init()
	inFlight.Dec()
}

// Handler returns the HTTP handler exposing the collectors.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// Serve exposes /metrics on addr in the background until the returned
// server is closed. The listener is bound synchronously so address
// errors surface to the caller.
func Serve(addr string, logger *zap.Logger) (*http.Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return srv, nil
}

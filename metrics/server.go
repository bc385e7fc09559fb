// Package metrics implements the optional --metrics-addr HTTP surface of
// SPEC_FULL.md §6: a chi-routed server exposing Prometheus counters
// derived from dedup.Stats plus a liveness check, modeled on rclone's
// fs/rc/rcserver metrics server (fs/rc/rcserver/metrics_test.go).
package metrics

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cea-hpc/rbh-fsevents/dedup"
)

// Collector exposes the live counters the pipeline maintains, polled on
// every /metrics scrape. *dedup.Deduplicator satisfies this via its
// Stats method.
type Collector interface {
	Stats() dedup.Stats
}

// Server is the metrics/health HTTP server of spec.md §6.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

const (
	metricsNamespace = "rbh_fsevents"
)

// gaugeFunc builds a prometheus.GaugeFunc backed by a dedup.Stats field
// read live from collector at scrape time, avoiding a second bookkeeping
// path for counters the deduplicator already owns.
func gaugeFunc(name, help string, collector Collector, field func(dedup.Stats) float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      name,
		Help:      help,
	}, func() float64 { return field(collector.Stats()) })
}

// NewServer builds a Server listening on addr, exposing GET /metrics
// (Prometheus text format) and GET /healthz.
func NewServer(addr string, collector Collector) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		gaugeFunc("batches_cut_total", "Number of times the deduplicator's ring overflowed and cut a batch.", collector,
			func(s dedup.Stats) float64 { return float64(s.BatchesCut) }),
		gaugeFunc("events_cloned_total", "Number of events the deduplicator has cloned into ring slots.", collector,
			func(s dedup.Stats) float64 { return float64(s.EventsCloned) }),
		gaugeFunc("ring_high_water_mark", "Largest number of events held in the ring at once.", collector,
			func(s dedup.Stats) float64 { return float64(s.HighWaterMark) }),
	)

	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		httpServer: &http.Server{Handler: mux},
		listener:   l,
	}, nil
}

// Addr reports the server's bound address, useful when addr was passed
// as ":0" to pick an ephemeral port (matching rclone's own test-harness
// convention of reading back the bound listener's address).
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks, accepting connections until the server is shut down.
func (s *Server) Serve() error {
	err := s.httpServer.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

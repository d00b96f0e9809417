package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the watcher's Prometheus counters, labelled by chain scope.
type Metrics struct {
	BlocksProcessed     *prometheus.CounterVec
	BlocksSkipped       *prometheus.CounterVec
	ContractsDiscovered *prometheus.CounterVec
	CandidatesResolved  *prometheus.CounterVec
	AlertsSent          *prometheus.CounterVec
	SendFailures        *prometheus.CounterVec
}

// New registers the watcher counters with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_blocks_processed_total",
			Help: "Total number of blocks scanned for contract creations",
		}, []string{"chain"}),
		BlocksSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_blocks_skipped_total",
			Help: "Total number of blocks skipped due to fetch failures",
		}, []string{"chain"}),
		ContractsDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_contracts_discovered_total",
			Help: "Total number of new contract creations observed",
		}, []string{"chain"}),
		CandidatesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_candidates_resolved_total",
			Help: "Total number of creations resolved into token candidates",
		}, []string{"chain"}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_alerts_sent_total",
			Help: "Total number of alert messages sent",
		}, []string{"chain"}),
		SendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_send_failures_total",
			Help: "Total number of failed alert sends",
		}, []string{"chain"}),
	}

	reg.MustRegister(
		m.BlocksProcessed,
		m.BlocksSkipped,
		m.ContractsDiscovered,
		m.CandidatesResolved,
		m.AlertsSent,
		m.SendFailures,
	)
	return m
}

// Serve exposes /metrics and /healthz until the context ends.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

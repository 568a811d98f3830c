// Package metrics exposes Prometheus collectors for agent episodes and tool
// calls.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "react_agent"

// Tool call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeUnknownTool = "unknown_tool"
)

// Metrics holds the agent's collectors. A nil *Metrics records nothing.
type Metrics struct {
	Episodes     *prometheus.CounterVec
	Iterations   prometheus.Histogram
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	ModelCalls   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "episodes_total",
			Help:      "Episodes finished, by termination reason.",
		}, []string{"reason"}),
		Iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "iterations",
			Help:      "Reasoning cycles used per episode.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 20, 25, 50},
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool dispatches, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Wall time spent inside tools.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"tool"}),
		ModelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model completions requested, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.Episodes, m.Iterations, m.ToolCalls, m.ToolDuration, m.ModelCalls} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveEpisode records a finished episode.
func (m *Metrics) ObserveEpisode(reason string, iterations int) {
	if m == nil {
		return
	}
	m.Episodes.WithLabelValues(reason).Inc()
	m.Iterations.Observe(float64(iterations))
}

// ObserveToolCall records one dispatch.
func (m *Metrics) ObserveToolCall(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	if outcome != OutcomeUnknownTool {
		m.ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
	}
}

// ObserveModelCall records one completion request.
func (m *Metrics) ObserveModelCall(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ModelCalls.WithLabelValues(result).Inc()
}

// Serve exposes gatherer on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

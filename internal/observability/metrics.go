package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	Turns          *prometheus.CounterVec
	LLMCalls       *prometheus.CounterVec
	Reflections    *prometheus.CounterVec
	MemoryNotes    prometheus.Counter
	StoreSaves     *prometheus.CounterVec
	WSMessages     *prometheus.CounterVec
	TurnLatency    prometheus.Histogram
	LLMLatency     prometheus.Histogram

	stages *stageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active coaching sessions.",
		}),
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed coaching turns by persona.",
		}, []string{"persona"}),
		LLMCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Model calls by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Reflections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reflections_total",
			Help:      "Reflection attempts by outcome.",
		}, []string{"outcome"}),
		MemoryNotes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_notes_total",
			Help:      "Long-term memory notes written.",
		}),
		StoreSaves: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_saves_total",
			Help:      "Document saves by backend.",
		}, []string{"backend"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		TurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "End-to-end coaching turn latency in milliseconds.",
			Buckets:   []float64{200, 500, 1000, 2000, 3000, 5000, 8000, 12000},
		}),
		LLMLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_latency_ms",
			Help:      "Single model call latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000},
		}),
		stages: newStageWindow(256),
	}
}

func (m *Metrics) ObserveTurnLatency(d time.Duration) {
	m.TurnLatency.Observe(float64(d.Milliseconds()))
	m.stages.Observe(StageTurnTotal, float64(d.Milliseconds()))
}

func (m *Metrics) ObserveLLMLatency(d time.Duration) {
	m.LLMLatency.Observe(float64(d.Milliseconds()))
}

// ObserveStage records a pipeline stage duration in the rolling window only;
// stages are for the status endpoint, not long-term scrape series.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stages.Observe(stage, float64(d.Milliseconds()))
}

func (m *Metrics) ObserveIndicator(name string) {
	m.stages.ObserveIndicator(name)
}

func (m *Metrics) StageSnapshot() StageSnapshot {
	return m.stages.Snapshot()
}

func (m *Metrics) ResetStages() {
	m.stages.Reset()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

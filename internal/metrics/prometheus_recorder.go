package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	stageResults  *prom.CounterVec
	runOutcome    *prom.CounterVec
	triggers      *prom.CounterVec
	preemptions   prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "doccpub",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "doccpub",
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doccpub",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doccpub",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"})
		pr.triggers = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doccpub",
			Name:      "triggers_received_total",
			Help:      "Publish triggers received by source",
		}, []string{"trigger"})
		pr.preemptions = prom.NewCounter(prom.CounterOpts{
			Namespace: "doccpub",
			Name:      "runs_preempted_total",
			Help:      "In-flight runs canceled by a newer trigger",
		})
		reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcome, pr.triggers, pr.preemptions)
	})
	return pr
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	pr.runDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	pr.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (pr *PrometheusRecorder) IncRunOutcome(outcome string) {
	pr.runOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) IncTriggerReceived(trigger string) {
	pr.triggers.WithLabelValues(trigger).Inc()
}

func (pr *PrometheusRecorder) IncRunPreempted() {
	pr.preemptions.Inc()
}

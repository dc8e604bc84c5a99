// Package metrics defines observability hooks for pipeline runs. The
// Recorder interface decouples instrumentation from execution: one-shot CLI
// runs use the no-op recorder, daemon mode wires the Prometheus recorder and
// serves it over /metrics.
package metrics

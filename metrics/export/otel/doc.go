// Package otel bridges the engine's internal counters into an
// OpenTelemetry meter as observable instruments. The exporter pulls a
// snapshot on every collection cycle; the engine itself stays free of
// any exporter dependency.
package otel

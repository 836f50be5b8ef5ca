// Package oteladapters bridges the eventstore observability interfaces to OpenTelemetry.
//
// MetricsCollector maps durations to histograms, counters to counters and values to gauges.
// SlogBridgeLogger and OTelLogger implement eventstore.ContextualLogger, so log records
// carry the trace of the context they were written in.
package oteladapters

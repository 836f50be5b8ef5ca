// Package spies provides test doubles that record what the event stores and the shell
// report through their Logger, ContextualLogger and MetricsCollector hooks.
package spies

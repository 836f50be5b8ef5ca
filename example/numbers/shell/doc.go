// Package shell wires the numbers domain to an event store: the event codec, the
// dynamic stream of a number and a Service that handles commands and projects numbers.
package shell

// Package sinks provides progress.Sink implementations: interactive
// terminal output, structured logs, and Prometheus counters.
package sinks

// Package metrics defines the process-wide Prometheus instruments and the
// handler that serves them.
package metrics

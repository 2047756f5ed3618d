// Package observability provides an OpenTelemetry-based metrics extension
// for workflow management. The MetricsExtension implements lifecycle hooks
// to record system-wide counters for items recorded and tasks started,
// completed, and failed.
//
// For per-execution tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability

// Package telemetry provides the observability plumbing for hearth:
// structured logging on zerolog, Prometheus metrics for runs and backend
// calls, and OpenTelemetry spans around the reconciliation pipeline phases.
//
// Everything here is optional at runtime. Metrics and tracing construct
// no-op instances when disabled, so callers never have to nil-check.
package telemetry

// Package tracing provides a thin OpenTelemetry wrapper used to instrument
// the permission decision lifecycle.
package tracing

// Package otel bridges dashauth controller metrics to OpenTelemetry.
//
// Authenticate durations go to a Float64Histogram named
// dashauth.authenticate.duration, recorded per call with outcome, cluster
// and oidc attributes and bucketed on the same bounds as the built-in
// histogram. Controller counters are reported from a snapshot by one
// observable callback registered in [Exporter.Bind].
//
// # What this package must NOT do
//
//   - Create a MeterProvider. Callers own the provider and its readers.
//   - Mutate controller state.
package otel

// Package prometheus exposes dashauth controller metrics as a
// prometheus.Collector.
//
// Counter names are prefixed dashauth_*_total; the single histogram is
// dashauth_authenticate_latency_seconds. The collector is unchecked and
// reads a fresh snapshot on every scrape.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry. Callers register the
//     collector or mount Handler.
//   - Mutate controller state.
package prometheus

// Package metric provides Prometheus metrics for curvectl.
//
//   - prometheus.go: per-run registry and the command pipeline counters
//   - push.go: delivery of a finished run to a Pushgateway
//
// A CLI process is too short-lived to be scraped, so metrics are gathered
// into a private registry and pushed once when a pushgateway URL is
// configured.
package metric

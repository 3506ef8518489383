// Package prometheus renders authjwt engine metrics in the Prometheus text
// exposition format without a client library or global registry. Callers mount
// [Exporter.Handler] on their own mux.
package prometheus

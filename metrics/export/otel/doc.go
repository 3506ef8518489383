// Package otel publishes authjwt engine metrics through the OpenTelemetry
// metric API. Counters become Int64ObservableCounter instruments and each gate
// latency bucket an Int64ObservableGauge. The caller owns the MeterProvider.
package otel

// Package otel bridges engine metrics to an OpenTelemetry meter using
// observable instruments: every collection cycle pulls a fresh snapshot
// from the engine, so nothing is pushed from the hot paths.
//
// Histograms are exported as per-bound cumulative bucket gauges because
// the engine tracks fixed buckets rather than raw samples.
package otel

// Package prometheus renders engine metrics in the Prometheus text
// exposition format, either on demand through [PrometheusExporter.Render]
// or mounted as an http.Handler.
//
// The exporter is pull-based and stateless: every render takes a fresh
// snapshot from the engine, so it adds no overhead to the hot paths.
package prometheus

// Package internaldefs holds the shared metric catalog consumed by the
// exporter packages: stable exposition names, help text, and histogram
// bucket bounds for every engine metric.
//
// It exists so the Prometheus and OTel exporters render identical series
// from one definition. Application code should not import it.
package internaldefs

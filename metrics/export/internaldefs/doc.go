// Package internaldefs holds the shared metric name table used by the
// export packages, so the OpenTelemetry and Prometheus exporters emit
// identical metric names.
package internaldefs

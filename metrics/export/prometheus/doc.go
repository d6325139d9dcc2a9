// Package prometheus renders engine metrics in the Prometheus text
// exposition format without depending on the Prometheus client library;
// the format is simple enough to write directly.
package prometheus

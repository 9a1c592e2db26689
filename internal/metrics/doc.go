// Package metrics exposes the pipeline's counters as Prometheus metrics.
//
// The collector reads point-in-time snapshots from the datalog facade, so
// scraping never touches the hot producer paths. Serve runs a standalone
// /metrics endpoint when the daemon is configured with a metrics address.
package metrics

// Package metrics records per-run pipeline metrics in a Prometheus registry.
//
// A run is a batch job, so nothing is served over HTTP; the registry is written
// in the text exposition format for the node_exporter textfile collector. All
// methods are safe on a nil *Run, which is how metrics are disabled.
package metrics

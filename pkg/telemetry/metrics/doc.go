// Package metrics provides Prometheus metrics for configuration builds and
// connection checks.
//
// # Metrics
//
//   - esclient_builds_total{source,result}: Builder runs by configuration
//     source (dict, file, default) and outcome
//   - esclient_build_duration_seconds: time spent resolving a configuration
//   - esclient_connection_checks_total{check,result}: invariant checks
//     (connect, version, master_only) by outcome (pass, fail, skipped)
//   - esclient_server_version_info{version}: set to 1 for the last version seen
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//	collector.RecordBuild("file", "success", elapsed)
//	collector.RecordCheck(metrics.CheckVersion, metrics.ResultPass)
//
//	// One-shot CLI runs export to a node_exporter textfile.
//	err := collector.WriteTextfile("/var/lib/node_exporter/esclient.prom")
//
// A nil *Collector is valid and records nothing.
package metrics

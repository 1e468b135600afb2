// Package telemetry groups the observability packages of esclient.
//
// # Components
//
//   - logging: structured logging with credential redaction
//   - metrics: Prometheus counters for builds and connection checks
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "DEBUG", Format: "ecs"})
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//	b, err := builder.Build(ctx, builder.Options{Logger: logger, Metrics: collector})
//
// Metrics can be written in the node_exporter textfile format with
// Collector.WriteTextfile.
package telemetry

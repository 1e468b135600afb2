package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esclient-go/esclient/pkg/builder"
	"github.com/esclient-go/esclient/pkg/cli"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/telemetry/logging"
	"github.com/esclient-go/esclient/pkg/telemetry/metrics"
	"github.com/esclient-go/esclient/pkg/transport"
)

func newTestConnectionCmd(opts *rootOptions) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Test connection to Elasticsearch",
		Long: `Resolve the configuration, connect, and run the version and master-only
checks.

Exit status is 1 for configuration errors, 2 when the connection or version
check fails and 3 when master_only is set and the node is not the elected
master.

Examples:
  esclient --hosts https://es01:9200 --ca-certs ca.pem test-connection
  esclient --config es.yml --master-only test-connection --metrics-file /var/lib/node_exporter/esclient.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var collector *metrics.Collector
			if metricsFile != "" {
				collector = metrics.NewCollector(metrics.Config{Enabled: true}, nil)
			}

			err := testConnection(cmd, opts, collector)
			if collector != nil {
				if werr := collector.WriteTextfile(metricsFile); werr != nil {
					opts.logger.Error("unable to write metrics file", "path", metricsFile, "error", werr)
				}
			}
			if err != nil {
				return cli.NewCommandError("test-connection", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write check results to this file in Prometheus text format")
	return cmd
}

func testConnection(cmd *cobra.Command, opts *rootOptions, collector *metrics.Collector) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	b, err := builder.Build(ctx, builder.Options{
		ConfigDict:    opts.configDict,
		ClientFactory: userAgentFactory,
		Logger:        opts.logger,
		Metrics:       collector,
	})
	if err != nil {
		return err
	}
	if err := b.Connect(ctx); err != nil {
		return err
	}

	version, err := b.Client().Version(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.Bold("Connection result:"))
	if b.ClientArgs().CloudID != nil {
		cli.Success(out, "cloud_id: %s", *b.ClientArgs().CloudID)
	} else {
		cli.Success(out, "hosts: %v", b.ClientArgs().Hosts)
	}
	cli.Success(out, "version: %s", version)
	if config.Deref(b.OtherArgs().SkipVersionTest) {
		cli.Warning(out, "version compatibility check skipped")
	}
	if b.IsMaster() {
		cli.Success(out, "connected to the elected master")
	}
	return nil
}

func userAgentFactory(args *config.ClientSettings, logger *logging.Logger) (builder.Client, error) {
	return transport.New(args, transport.WithLogger(logger), transport.WithUserAgent(userAgent()))
}

func newTestStderrCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test-stderr",
		Short: "Test logging output to stderr",
		Long: `Log one record at each level. Without a log file, DEBUG and INFO go to
stdout and WARNING and above go to stderr.`,
		Run: func(cmd *cobra.Command, args []string) {
			logger := opts.logger.Named("cli")
			logger.Debug("This is a debug message")
			logger.Info("This is an info message")
			logger.Warn("This is a warning message")
			logger.Error("This is an error message")
			logger.Critical("This is a critical message")
			cli.Success(cmd.OutOrStdout(), "Logging test complete.")
		},
	}
}

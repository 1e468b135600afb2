package main

import (
	"github.com/spf13/cobra"

	"github.com/esclient-go/esclient/pkg/builder"
	"github.com/esclient-go/esclient/pkg/cli"
	"github.com/esclient-go/esclient/pkg/telemetry/logging"
)

func newShowAllOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show-all-options",
		Short:             "Show all client configuration options",
		Long:              `List every configuration option, hidden ones included, with the environment variable that sets it.`,
		PersistentPreRunE: skipSetup,
		Run: func(cmd *cobra.Command, args []string) {
			cli.RenderOptions(cmd.OutOrStdout(), optionRows())
		},
	}
}

func newShowConfigCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show-config",
		Short: "Show the resolved configuration",
		Long: `Merge the configuration file with flags and environment variables,
resolve it and print the result. Hosts are normalized and credentials are
shown as null once moved to the secret store.

Examples:
  esclient --config es.yml show-config
  esclient --config es.yml --hosts https://es02:9200 show-config --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			b, err := builder.Build(cmd.Context(), builder.Options{
				ConfigDict: opts.configDict,
				Logger:     opts.logger,
			})
			if err != nil {
				return cli.NewCommandError("show-config", err)
			}
			resolved := map[string]any{"elasticsearch": b.Config()}
			return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), logging.Redact(resolved))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml, json, text")
	return cmd
}

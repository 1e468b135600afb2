package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/esclient-go/esclient/pkg/cli"
	"github.com/esclient-go/esclient/pkg/clienterr"
	"github.com/esclient-go/esclient/pkg/config"
	"github.com/esclient-go/esclient/pkg/telemetry/logging"
)

// rootOptions carries what the persistent setup resolves for subcommands.
type rootOptions struct {
	envFile string
	v       *viper.Viper

	// configDict is the merged document handed to the builder.
	configDict map[string]any
	logger     *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "esclient",
		Short: "Elasticsearch client configuration tool",
		Long: `esclient resolves and validates Elasticsearch client configuration.

Settings are read from a YAML configuration file and overridden field by
field by command-line flags and ESCLIENT_* environment variables. A
--cloud-id given on the command line replaces hosts from the file, and
--hosts replaces a cloud_id from the file.

Credentials are never printed: show-config redacts passwords, API keys,
bearer tokens and opaque IDs.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logger != nil {
				return opts.logger.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to configuration file")
	flags.StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file first")
	registerOptions(flags)

	v, err := newViper(flags)
	if err != nil {
		// Binding only fails on a nil flag set.
		panic(err)
	}
	opts.v = v

	cmd.AddCommand(
		newVersionCmd(),
		newShowAllOptionsCmd(),
		newShowConfigCmd(opts),
		newTestConnectionCmd(opts),
		newTestStderrCmd(opts),
	)
	return cmd
}

// setup loads the env file, the configuration file and the overrides, and
// builds the logger.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return clienterr.WrapConfig(err, "Unable to load environment file %s", o.envFile)
		}
	}

	var file map[string]any
	if path := o.v.GetString("config"); path != "" {
		doc, err := config.Load(path)
		if err != nil {
			return err
		}
		file = doc
	}

	overrides := overridesFrom(o.v)

	logSettings, err := config.ResolveLogging(file, overrides.Logging)
	if err != nil {
		return err
	}
	logCfg := logging.ConfigFromSettings(logSettings)
	logCfg.Stdout = cmd.OutOrStdout()
	logCfg.Stderr = cmd.ErrOrStderr()
	logger, err := logging.New(logCfg)
	if err != nil {
		return clienterr.WrapConfig(err, "Invalid logging configuration")
	}
	o.logger = logger

	dict, err := config.GenerateConfigDict(file, overrides)
	if err != nil {
		return err
	}
	o.configDict = dict
	logger.Named("cli").Debug("configuration merged", "config", logging.Redact(dict))
	return nil
}

// skipSetup replaces the root setup for commands that need no configuration.
func skipSetup(*cobra.Command, []string) error { return nil }

// Execute runs the root command and returns the process exit status.
func Execute() int {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		cli.Failure(cmd.ErrOrStderr(), "%v", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/esclient-go/esclient/pkg/cli"
	"github.com/esclient-go/esclient/pkg/config"
)

type optionKind int

const (
	kindString optionKind = iota
	kindStrings
	kindFloat
	kindSwitch // --name and --no-name
)

// option is one configuration flag. Every option is also read from
// ESCLIENT_<NAME> with dashes turned into underscores.
type option struct {
	name   string
	kind   optionKind
	usage  string
	hidden bool
}

var configOptions = []option{
	{name: "hosts", kind: kindStrings, usage: "Elasticsearch URL to connect to (repeatable)"},
	{name: "cloud-id", kind: kindString, usage: "Elastic Cloud instance id"},
	{name: "api-token", kind: kindString, usage: "The base64 encoded API Key token"},
	{name: "id", kind: kindString, usage: `API Key "id" value`},
	{name: "api-key", kind: kindString, usage: `API Key "api_key" value`},
	{name: "username", kind: kindString, usage: "Elasticsearch username"},
	{name: "password", kind: kindString, usage: "Elasticsearch password"},
	{name: "bearer-auth", kind: kindString, usage: "Bearer authentication token", hidden: true},
	{name: "opaque-id", kind: kindString, usage: "X-Opaque-Id HTTP header value", hidden: true},
	{name: "request-timeout", kind: kindFloat, usage: "Request timeout in seconds"},
	{name: "http-compress", kind: kindSwitch, usage: "Enable HTTP compression", hidden: true},
	{name: "verify-certs", kind: kindSwitch, usage: "Verify SSL/TLS certificate(s)"},
	{name: "ca-certs", kind: kindString, usage: "Path to CA certificate file"},
	{name: "client-cert", kind: kindString, usage: "Path to client certificate file"},
	{name: "client-key", kind: kindString, usage: "Path to client key file"},
	{name: "ssl-assert-hostname", kind: kindString, usage: "Hostname or IP address to verify on the node's certificate", hidden: true},
	{name: "ssl-assert-fingerprint", kind: kindString, usage: "SHA-256 fingerprint of the node's certificate; replaces root-of-trust verification", hidden: true},
	{name: "ssl-version", kind: kindString, usage: "Minimum acceptable TLS version", hidden: true},
	{name: "master-only", kind: kindSwitch, usage: "Only run if the single host provided is the elected master", hidden: true},
	{name: "skip-version-test", kind: kindSwitch, usage: "Skip the Elasticsearch version compatibility check", hidden: true},
	{name: "loglevel", kind: kindString, usage: "Log level: DEBUG, INFO, WARNING, ERROR or CRITICAL"},
	{name: "logfile", kind: kindString, usage: "Log file"},
	{name: "logformat", kind: kindString, usage: "Log output format: default, json or ecs"},
	{name: "blacklist", kind: kindStrings, usage: "Named loggers that will not be logged (repeatable)", hidden: true},
}

// registerOptions adds every configuration option to flags.
func registerOptions(flags *pflag.FlagSet) {
	for _, o := range configOptions {
		switch o.kind {
		case kindString:
			flags.String(o.name, "", o.usage)
		case kindStrings:
			flags.StringSlice(o.name, nil, o.usage)
		case kindFloat:
			flags.Float64(o.name, 0, o.usage)
		case kindSwitch:
			flags.Bool(o.name, false, o.usage)
			flags.Bool("no-"+o.name, false, "Disable: "+lowerFirst(o.usage))
			if o.hidden {
				_ = flags.MarkHidden("no-" + o.name)
			}
		}
		if o.hidden {
			_ = flags.MarkHidden(o.name)
		}
	}
}

// newViper binds flags to a viper instance reading ESCLIENT_* variables.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// envName returns the environment variable read for a flag.
func envName(flag string) string {
	return config.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// optionRows describes every option for show-all-options, hidden ones
// included.
func optionRows() []cli.OptionRow {
	rows := []cli.OptionRow{
		{Flag: "--config", Env: envName("config"), Usage: "Path to configuration file"},
		{Flag: "--env-file", Usage: "Load environment variables from this file first"},
	}
	for _, o := range configOptions {
		row := cli.OptionRow{Flag: "--" + o.name, Env: envName(o.name), Usage: o.usage}
		if o.kind == kindSwitch {
			row.Flag = "--[no-]" + o.name
			row.Env = envName(o.name) + ", " + envName("no-"+o.name)
		}
		if o.name == "loglevel" {
			row.Default = "INFO"
		}
		if o.name == "logformat" {
			row.Default = "default"
		}
		rows = append(rows, row)
	}
	return rows
}

// stringOpt returns the value of a string option, or nil when it was given
// neither as a flag nor in the environment.
func stringOpt(v *viper.Viper, name string) *string {
	if !v.IsSet(name) {
		return nil
	}
	s := v.GetString(name)
	if s == "" {
		return nil
	}
	return &s
}

func stringsOpt(v *viper.Viper, name string) []string {
	if !v.IsSet(name) {
		return nil
	}
	var out []string
	for _, s := range v.GetStringSlice(name) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatOpt(v *viper.Viper, name string) *float64 {
	if !v.IsSet(name) {
		return nil
	}
	f := v.GetFloat64(name)
	return &f
}

// switchOpt resolves a --name/--no-name pair to true, false or unset.
// --no-name wins when both are given.
func switchOpt(v *viper.Viper, name string) *bool {
	if v.IsSet("no-"+name) && v.GetBool("no-"+name) {
		return config.Ptr(false)
	}
	if v.IsSet(name) {
		return config.Ptr(v.GetBool(name))
	}
	return nil
}

// overridesFrom collects the options that were explicitly set.
func overridesFrom(v *viper.Viper) config.Overrides {
	o := config.Overrides{
		Client: config.ClientSettings{
			Hosts:                stringsOpt(v, "hosts"),
			CloudID:              stringOpt(v, "cloud-id"),
			BearerAuth:           stringOpt(v, "bearer-auth"),
			OpaqueID:             stringOpt(v, "opaque-id"),
			RequestTimeout:       floatOpt(v, "request-timeout"),
			HTTPCompress:         switchOpt(v, "http-compress"),
			VerifyCerts:          switchOpt(v, "verify-certs"),
			CACerts:              stringOpt(v, "ca-certs"),
			ClientCert:           stringOpt(v, "client-cert"),
			ClientKey:            stringOpt(v, "client-key"),
			SSLAssertHostname:    stringOpt(v, "ssl-assert-hostname"),
			SSLAssertFingerprint: stringOpt(v, "ssl-assert-fingerprint"),
			SSLVersion:           stringOpt(v, "ssl-version"),
		},
		Other: config.OtherSettings{
			MasterOnly:      switchOpt(v, "master-only"),
			SkipVersionTest: switchOpt(v, "skip-version-test"),
			Username:        stringOpt(v, "username"),
			Password:        stringOpt(v, "password"),
		},
		Logging: config.LoggingSettings{
			LogLevel:  stringOpt(v, "loglevel"),
			LogFile:   stringOpt(v, "logfile"),
			LogFormat: stringOpt(v, "logformat"),
			Blacklist: stringsOpt(v, "blacklist"),
		},
	}

	apiKey := config.APIKeySettings{
		ID:     stringOpt(v, "id"),
		APIKey: stringOpt(v, "api-key"),
		Token:  stringOpt(v, "api-token"),
	}
	if apiKey.ID != nil || apiKey.APIKey != nil || apiKey.Token != nil {
		o.Other.APIKey = &apiKey
	}
	return o
}

package config

import (
	"github.com/esclient-go/esclient/pkg/clienterr"
)

// Overrides carries the values supplied on the command line or through the
// environment. Only non-nil fields override the file.
type Overrides struct {
	Client  ClientSettings
	Other   OtherSettings
	Logging LoggingSettings
}

// GenerateConfigDict merges o over the file document and returns a document
// ready for the builder:
//
//	{"elasticsearch": {"client": {...}, "other_settings": {...}}}
//
// file may be nil. CLI hosts are normalized before the merge, taking the file's
// client.port for hosts given without one, and fail with a ConfigurationError
// when malformed.
func GenerateConfigDict(file map[string]any, o Overrides) (map[string]any, error) {
	validated, err := CheckConfig(file)
	if err != nil {
		return nil, err
	}

	client, err := ClientSettingsFromMap(validated["client"].(map[string]any))
	if err != nil {
		return nil, err
	}
	other, err := OtherSettingsFromMap(validated["other_settings"].(map[string]any))
	if err != nil {
		return nil, err
	}

	cli := o.Client
	if cli.Hosts != nil {
		port := Deref(client.Port)
		if cli.Port != nil {
			port = *cli.Port
		}
		hosts := make([]string, 0, len(cli.Hosts))
		for _, h := range cli.Hosts {
			normalized, err := NormalizeHost(h, port)
			if err != nil {
				return nil, clienterr.WrapConfig(err, "Invalid URL schema in --hosts")
			}
			hosts = append(hosts, normalized)
		}
		cli.Hosts = hosts
		client.CloudID = nil
	}
	if cli.CloudID != nil {
		client.Hosts = nil
	}

	client.Update(cli)
	other.Update(o.Other)

	if client.Hosts == nil && client.CloudID == nil {
		client.Hosts = DefaultHosts()
	}

	return map[string]any{
		"elasticsearch": map[string]any{
			"client":         client.Pruned(),
			"other_settings": other.Pruned(),
		},
	}, nil
}

// ResolveLogging validates the logging block of file and overlays the CLI
// logging values.
func ResolveLogging(file map[string]any, o LoggingSettings) (*LoggingSettings, error) {
	validated, err := CheckLogging(file)
	if err != nil {
		return nil, err
	}
	l, err := LoggingSettingsFromMap(validated)
	if err != nil {
		return nil, err
	}
	return l.Update(o), nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ClientSettings holds the "client" block: settings handed to the network
// client. A nil field is unset.
//
// The credential slots BasicAuth, APIKey and BearerAuth only carry values
// until the builder moves them into its secret store.
type ClientSettings struct {
	Hosts      []string          `mapstructure:"hosts" yaml:"hosts,omitempty"`
	CloudID    *string           `mapstructure:"cloud_id" yaml:"cloud_id,omitempty"`
	APIKey     []string          `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BasicAuth  []string          `mapstructure:"basic_auth" yaml:"basic_auth,omitempty"`
	BearerAuth *string           `mapstructure:"bearer_auth" yaml:"bearer_auth,omitempty"`
	OpaqueID   *string           `mapstructure:"opaque_id" yaml:"opaque_id,omitempty"`
	Headers    map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`

	ConnectionsPerNode *int     `mapstructure:"connections_per_node" yaml:"connections_per_node,omitempty"`
	HTTPCompress       *bool    `mapstructure:"http_compress" yaml:"http_compress,omitempty"`
	RequestTimeout     *float64 `mapstructure:"request_timeout" yaml:"request_timeout,omitempty"`
	Port               *int     `mapstructure:"port" yaml:"port,omitempty"`

	// TLS
	VerifyCerts          *bool   `mapstructure:"verify_certs" yaml:"verify_certs,omitempty"`
	CACerts              *string `mapstructure:"ca_certs" yaml:"ca_certs,omitempty"`
	ClientCert           *string `mapstructure:"client_cert" yaml:"client_cert,omitempty"`
	ClientKey            *string `mapstructure:"client_key" yaml:"client_key,omitempty"`
	SSLAssertHostname    *string `mapstructure:"ssl_assert_hostname" yaml:"ssl_assert_hostname,omitempty"`
	SSLAssertFingerprint *string `mapstructure:"ssl_assert_fingerprint" yaml:"ssl_assert_fingerprint,omitempty"`
	SSLVersion           *string `mapstructure:"ssl_version" yaml:"ssl_version,omitempty"`
	SSLShowWarn          *bool   `mapstructure:"ssl_show_warn" yaml:"ssl_show_warn,omitempty"`

	// Node pool and retries
	RandomizeNodesInPool  *bool    `mapstructure:"randomize_nodes_in_pool" yaml:"randomize_nodes_in_pool,omitempty"`
	DeadNodeBackoffFactor *float64 `mapstructure:"dead_node_backoff_factor" yaml:"dead_node_backoff_factor,omitempty"`
	MaxDeadNodeBackoff    *float64 `mapstructure:"max_dead_node_backoff" yaml:"max_dead_node_backoff,omitempty"`
	DefaultMimetype       *string  `mapstructure:"default_mimetype" yaml:"default_mimetype,omitempty"`
	MaxRetries            *int     `mapstructure:"max_retries" yaml:"max_retries,omitempty"`
	RetryOnStatus         []int    `mapstructure:"retry_on_status" yaml:"retry_on_status,omitempty"`
	RetryOnTimeout        *bool    `mapstructure:"retry_on_timeout" yaml:"retry_on_timeout,omitempty"`

	// Sniffing
	SniffOnStart            *bool    `mapstructure:"sniff_on_start" yaml:"sniff_on_start,omitempty"`
	SniffBeforeRequests     *bool    `mapstructure:"sniff_before_requests" yaml:"sniff_before_requests,omitempty"`
	SniffOnNodeFailure      *bool    `mapstructure:"sniff_on_node_failure" yaml:"sniff_on_node_failure,omitempty"`
	SniffTimeout            *float64 `mapstructure:"sniff_timeout" yaml:"sniff_timeout,omitempty"`
	MinDelayBetweenSniffing *float64 `mapstructure:"min_delay_between_sniffing" yaml:"min_delay_between_sniffing,omitempty"`

	MetaHeader *bool `mapstructure:"meta_header" yaml:"meta_header,omitempty"`
}

// APIKeySettings holds the raw API key material of other_settings.
type APIKeySettings struct {
	ID     *string `mapstructure:"id" yaml:"id,omitempty"`
	APIKey *string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// Token is base64("id:api_key") and takes precedence over ID/APIKey.
	Token *string `mapstructure:"token" yaml:"token,omitempty"`
}

// OtherSettings holds the "other_settings" block: values that steer
// resolution and connection checks but are not handed to the client.
type OtherSettings struct {
	MasterOnly      *bool           `mapstructure:"master_only" yaml:"master_only,omitempty"`
	SkipVersionTest *bool           `mapstructure:"skip_version_test" yaml:"skip_version_test,omitempty"`
	Username        *string         `mapstructure:"username" yaml:"username,omitempty"`
	Password        *string         `mapstructure:"password" yaml:"password,omitempty"`
	APIKey          *APIKeySettings `mapstructure:"api_key" yaml:"api_key,omitempty"`
}

// LoggingSettings holds the "logging" block.
type LoggingSettings struct {
	LogLevel  *string  `mapstructure:"loglevel" yaml:"loglevel,omitempty"`
	LogFile   *string  `mapstructure:"logfile" yaml:"logfile,omitempty"`
	LogFormat *string  `mapstructure:"logformat" yaml:"logformat,omitempty"`
	Blacklist []string `mapstructure:"blacklist" yaml:"blacklist,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Update overlays the non-nil fields of partial and returns c.
func (c *ClientSettings) Update(partial ClientSettings) *ClientSettings {
	overlay(c, &partial)
	return c
}

// Update overlays the non-nil fields of partial and returns o. The api_key
// block is merged field by field.
func (o *OtherSettings) Update(partial OtherSettings) *OtherSettings {
	overlay(o, &partial)
	return o
}

// Update overlays the non-nil fields of partial and returns l.
func (l *LoggingSettings) Update(partial LoggingSettings) *LoggingSettings {
	overlay(l, &partial)
	return l
}

// Pruned returns the settings as a map holding only the non-nil fields.
func (c *ClientSettings) Pruned() map[string]any { return toMap(c) }

// Pruned returns the settings as a map holding only the non-nil fields.
func (o *OtherSettings) Pruned() map[string]any { return toMap(o) }

// Pruned returns the settings as a map holding only the non-nil fields.
func (l *LoggingSettings) Pruned() map[string]any { return toMap(l) }

// Clone returns a deep copy of c.
func (c *ClientSettings) Clone() *ClientSettings {
	out := &ClientSettings{}
	overlay(out, c)
	return out
}

// Scheme returns the URL scheme the client will use: that of the first host,
// or https when only a cloud_id is set. It returns "" when neither is set.
func (c *ClientSettings) Scheme() string {
	if len(c.Hosts) > 0 {
		scheme, _, found := strings.Cut(c.Hosts[0], "://")
		if found {
			return strings.ToLower(scheme)
		}
		return ""
	}
	if c.CloudID != nil {
		return "https"
	}
	return ""
}

// ClientSettingsFromMap decodes a validated client block.
func ClientSettingsFromMap(m map[string]any) (*ClientSettings, error) {
	var c ClientSettings
	if err := decode(m, &c); err != nil {
		return nil, fmt.Errorf("failed to decode client settings: %w", err)
	}
	return &c, nil
}

// OtherSettingsFromMap decodes a validated other_settings block.
func OtherSettingsFromMap(m map[string]any) (*OtherSettings, error) {
	var o OtherSettings
	if err := decode(m, &o); err != nil {
		return nil, fmt.Errorf("failed to decode other settings: %w", err)
	}
	return &o, nil
}

// LoggingSettingsFromMap decodes a validated logging block.
func LoggingSettingsFromMap(m map[string]any) (*LoggingSettings, error) {
	var l LoggingSettings
	if err := decode(m, &l); err != nil {
		return nil, fmt.Errorf("failed to decode logging settings: %w", err)
	}
	return &l, nil
}

func decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

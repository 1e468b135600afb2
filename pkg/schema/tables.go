package schema

// Defaults for fields that do not default to null.
const (
	DefaultMasterOnly      = false
	DefaultSkipVersionTest = false
	DefaultLogLevel        = "INFO"
	DefaultLogFormat       = "default"
)

// DefaultBlacklist names the loggers silenced unless configured otherwise.
func DefaultBlacklist() []any { return []any{"transport"} }

// ClientFields is the table of the "client" block: settings handed to the
// network client once secrets have been moved out.
func ClientFields() []Field {
	return []Field{
		Optional("hosts", StringList),
		Optional("cloud_id", String),
		Optional("api_key", Pair),
		Optional("basic_auth", Pair),
		Optional("bearer_auth", String),
		Optional("opaque_id", String),
		Optional("headers", StringMap),
		Optional("connections_per_node", Int).Constrain("min=1,max=100"),
		Optional("http_compress", Bool),
		Optional("verify_certs", Bool),
		Optional("ca_certs", String),
		Optional("client_cert", String),
		Optional("client_key", String),
		Optional("ssl_assert_hostname", String),
		Optional("ssl_assert_fingerprint", String),
		Optional("ssl_version", Scalar),
		Optional("ssl_show_warn", Bool),
		Optional("request_timeout", Float).Constrain("min=0.1,max=86400"),
		Optional("port", Int).Constrain("min=1,max=65535"),
		Optional("randomize_nodes_in_pool", Bool),
		Optional("dead_node_backoff_factor", Float).Constrain("min=0"),
		Optional("max_dead_node_backoff", Float).Constrain("min=0"),
		Optional("default_mimetype", String),
		Optional("max_retries", Int).Constrain("min=1,max=100"),
		Optional("retry_on_status", IntList).Constrain("min=100,max=599"),
		Optional("retry_on_timeout", Bool),
		Optional("sniff_on_start", Bool),
		Optional("sniff_before_requests", Bool),
		Optional("sniff_on_node_failure", Bool),
		Optional("sniff_timeout", Float).Constrain("min=0.1,max=100"),
		Optional("min_delay_between_sniffing", Float).Constrain("min=1,max=100"),
		Optional("meta_header", Bool),
	}
}

// OtherFields is the table of the "other_settings" block.
func OtherFields() []Field {
	return []Field{
		WithDefault("master_only", Bool, DefaultMasterOnly),
		WithDefault("skip_version_test", Bool, DefaultSkipVersionTest),
		Optional("username", String),
		Optional("password", String),
		Nested("api_key",
			Optional("id", String),
			Optional("api_key", String),
			Optional("token", String),
		),
	}
}

// NewConfigSchema returns the schema of the elasticsearch block.
func NewConfigSchema() *Schema {
	return New("elasticsearch",
		Nested("client", ClientFields()...),
		Nested("other_settings", OtherFields()...),
	)
}

// NewLoggingSchema returns the schema of the logging block.
func NewLoggingSchema() *Schema {
	return New("logging",
		WithDefault("loglevel", Scalar, DefaultLogLevel).Constrain("loglevel"),
		Optional("logfile", String),
		WithDefault("logformat", String, DefaultLogFormat).Constrain("oneof=default json ecs"),
		WithDefault("blacklist", StringList, DefaultBlacklist()),
	)
}

package config

// Default values and fixed names.
const (
	// EnvPrefix prefixes the environment variables bound to CLI flags.
	EnvPrefix = "ESCLIENT"

	// DefaultHost is used when neither hosts nor cloud_id is configured.
	DefaultHost = "http://127.0.0.1:9200"

	// DefaultVersionMin is the lowest accepted server version (inclusive).
	DefaultVersionMin = "8.0.0"
	// DefaultVersionMax is the upper bound of accepted server versions
	// (exclusive).
	DefaultVersionMax = "8.99.99"

	// TestWhat and Location label validation failures of the elasticsearch
	// block.
	TestWhat = "Elasticsearch Configuration"
	Location = "elasticsearch"

	// LoggingTestWhat and LoggingLocation label validation failures of the
	// logging block.
	LoggingTestWhat = "Logging Configuration"
	LoggingLocation = "logging"
)

// Ports assumed for hosts given without one.
const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443
)

// DefaultHosts returns a fresh copy of the default host list.
func DefaultHosts() []string {
	return []string{DefaultHost}
}

// IsDefaultHosts reports whether hosts is exactly the default host list.
func IsDefaultHosts(hosts []string) bool {
	return len(hosts) == 1 && hosts[0] == DefaultHost
}

// DefaultConfig returns the built-in document used when no source is given.
func DefaultConfig() map[string]any {
	return map[string]any{
		"elasticsearch": map[string]any{
			"client": map[string]any{
				"hosts": []any{DefaultHost},
			},
		},
	}
}

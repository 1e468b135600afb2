// Package config resolves esclient configuration documents into typed
// settings records.
//
// # Loading
//
// Load reads a YAML file into a nested map. Any scalar value whose whole
// text is a placeholder is replaced from the process environment before the
// map is returned:
//
//   - ${NAME} becomes the value of NAME, or null when NAME is unset
//   - ${NAME:default} becomes the value of NAME, or the literal default
//
// Placeholders embedded inside longer strings are left alone. Every call
// re-reads and re-parses the file.
//
// # Document shape
//
//	elasticsearch:
//	  client:
//	    hosts: ["https://es01:9200"]
//	    request_timeout: 30
//	  other_settings:
//	    master_only: false
//	    username: ${ES_USER}
//	    password: ${ES_PASS}
//	logging:
//	  loglevel: INFO
//
// CheckConfig validates the elasticsearch block with the schema package and
// fills defaults. A document without an elasticsearch block falls back to
// DefaultConfig.
//
// # Settings records
//
// ClientSettings, OtherSettings and LoggingSettings are explicit records
// whose fields are nil when unset. Update overlays the non-nil fields of a
// partial record:
//
//	client.Update(config.ClientSettings{RequestTimeout: ptr(60.0)})
//
// # Precedence
//
// GenerateConfigDict merges command-line overrides over a file document.
// CLI values win field by field, a CLI cloud_id clears file hosts and CLI
// hosts clear a file cloud_id. When neither hosts nor cloud_id survive the
// merge the default host is used.
package config

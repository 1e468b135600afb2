// Command esclient resolves and validates Elasticsearch client configuration
// and tests connections with it.
//
// Configuration comes from a YAML file, from command-line flags and from
// ESCLIENT_* environment variables. Flags and environment variables override
// the file field by field.
//
// Usage:
//
//	# Show the resolved configuration, credentials redacted
//	esclient --config es.yml show-config
//
//	# Connect and check version and master affinity
//	esclient --hosts https://es01:9200 --username elastic --password changeme test-connection
//
//	# Every option with its environment variable
//	esclient show-all-options
//
//	# Check where each log level is written
//	esclient --loglevel DEBUG test-stderr
package main

import "os"

func main() {
	os.Exit(Execute())
}

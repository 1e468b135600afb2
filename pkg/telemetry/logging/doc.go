// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Three output formats: default (text), json and ecs
//   - Level names NOTSET, DEBUG, INFO, WARNING, ERROR and CRITICAL
//   - Routing of records below WARNING to stdout and the rest to stderr,
//     or everything to a log file
//   - Per-logger filtering through explicit Allow and Block predicates
//   - Redaction of credential fields in every record
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "INFO",
//	    Format:    "ecs",
//	    Blacklist: []string{"transport"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.Named("builder")
//	log.Info("configuration resolved", "hosts", hosts, "password", pw) // password redacted
//
// # Redaction
//
// Redact returns a deep copy of a configuration structure with the values
// of password, basic_auth, bearer_auth, api_key, id and opaque_id replaced
// by "REDACTED". It is used wherever configuration is printed or logged.
package logging

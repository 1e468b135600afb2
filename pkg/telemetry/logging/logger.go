package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/esclient-go/esclient/pkg/config"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatDefault outputs logs as key=value text.
	FormatDefault LogFormat = "default"
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatECS outputs logs as Elastic Common Schema JSON.
	FormatECS LogFormat = "ecs"
)

// Levels, spaced like slog's own so DEBUG/INFO/WARNING/ERROR line up with
// slog.LevelDebug and friends.
const (
	LevelNotSet   = slog.Level(-8)
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarning  = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

const ecsVersion = "1.6.0"

// Logger provides structured logging with redaction.
type Logger struct {
	slog     *slog.Logger
	redactor *Redactor
	name     string
	closer   io.Closer
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is NOTSET, DEBUG, INFO, WARNING, ERROR, CRITICAL, or one of
	// the numeric values 0, 10, ... 50.
	Level string

	// Format is "default", "json" or "ecs".
	Format string

	// File receives every record when set. Otherwise records below
	// WARNING go to Stdout and the rest to Stderr.
	File string

	// Blacklist names loggers whose records are dropped.
	Blacklist []string

	// Whitelist, when non-empty, restricts output to the named loggers.
	Whitelist []string

	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// ConfigFromSettings converts a resolved logging block.
func ConfigFromSettings(s *config.LoggingSettings) Config {
	return Config{
		Level:     config.Deref(s.LogLevel),
		Format:    config.Deref(s.LogFormat),
		File:      config.Deref(s.LogFile),
		Blacklist: s.Blacklist,
	}
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	var (
		handler slog.Handler
		closer  io.Closer
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		handler = newFormatHandler(f, format, level)
		closer = f
	} else {
		stdout, stderr := cfg.Stdout, cfg.Stderr
		if stdout == nil {
			stdout = os.Stdout
		}
		if stderr == nil {
			stderr = os.Stderr
		}
		handler = &splitHandler{
			low:  newFormatHandler(stdout, format, level),
			high: newFormatHandler(stderr, format, level),
		}
	}

	fh := &filterHandler{next: handler}
	if len(cfg.Whitelist) > 0 {
		fh.allow = Allow(cfg.Whitelist...)
	}
	if len(cfg.Blacklist) > 0 {
		fh.block = Block(cfg.Blacklist...)
	}

	return &Logger{
		slog:     slog.New(fh),
		redactor: NewRedactor(logOnlyKeys...),
		closer:   closer,
	}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{slog: slog.New(slog.DiscardHandler), redactor: NewRedactor(logOnlyKeys...)}
}

func newFormatHandler(w io.Writer, format LogFormat, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevelName}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatECS:
		opts.ReplaceAttr = replaceECS
		return slog.NewJSONHandler(w, opts).WithAttrs([]slog.Attr{slog.String("ecs.version", ecsVersion)})
	default:
		return slog.NewTextHandler(w, opts)
	}
}

func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(lvl))
		}
	}
	return a
}

func replaceECS(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "@timestamp"
	case slog.LevelKey:
		a.Key = "log.level"
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToLower(LevelName(lvl)))
		}
	case slog.MessageKey:
		a.Key = "message"
	case LoggerKey:
		a.Key = "log.logger"
	}
	return a
}

// LevelName returns the level's name in the NOTSET..CRITICAL vocabulary.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= LevelError:
		return "ERROR"
	case l >= LevelWarning:
		return "WARNING"
	case l >= LevelInfo:
		return "INFO"
	case l >= LevelDebug:
		return "DEBUG"
	default:
		return "NOTSET"
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(context.Background(), LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(context.Background(), LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(context.Background(), LevelWarning, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(context.Background(), LevelError, msg, args...)
}

// Critical logs a critical message.
func (l *Logger) Critical(msg string, args ...any) {
	l.log(context.Background(), LevelCritical, msg, args...)
}

// DebugContext logs a debug message with context fields.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelDebug, msg, append(extractContextFields(ctx), args...)...)
}

// InfoContext logs an info message with context fields.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelInfo, msg, append(extractContextFields(ctx), args...)...)
}

// WarnContext logs a warning message with context fields.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelWarning, msg, append(extractContextFields(ctx), args...)...)
}

// ErrorContext logs an error message with context fields.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelError, msg, append(extractContextFields(ctx), args...)...)
}

// Log logs at an arbitrary level.
func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.log(ctx, level, msg, args...)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.slog.Enabled(ctx, level) {
		return
	}
	l.slog.Log(ctx, level, msg, l.redactor.RedactArgs(args...)...)
}

// With creates a new logger with additional fields.
func (l *Logger) With(args ...any) *Logger {
	clone := *l
	clone.slog = l.slog.With(l.redactor.RedactArgs(args...)...)
	return &clone
}

// Named returns a child logger. Names nest with dots, so
// Named("transport").Named("http") is "transport.http".
func (l *Logger) Named(name string) *Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	clone := *l
	clone.name = full
	clone.slog = l.slog.With(LoggerKey, full)
	return &clone
}

// Name returns the logger name, "" for the root.
func (l *Logger) Name() string { return l.name }

// Slog returns the underlying slog.Logger. Records written through it
// bypass argument redaction.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// ParseLevel parses a level name or its numeric value.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "NOTSET", "0":
		return LevelNotSet, nil
	case "DEBUG", "10":
		return LevelDebug, nil
	case "INFO", "20", "":
		return LevelInfo, nil
	case "WARN", "WARNING", "30":
		return LevelWarning, nil
	case "ERROR", "40":
		return LevelError, nil
	case "CRITICAL", "FATAL", "50":
		return LevelCritical, nil
	}
	if _, err := strconv.Atoi(levelStr); err == nil {
		return LevelInfo, fmt.Errorf("numeric level must be a multiple of 10 between 0 and 50: %s", levelStr)
	}
	return LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
}

func parseFormat(formatStr string) (LogFormat, error) {
	switch strings.ToLower(formatStr) {
	case "default", "text", "":
		return FormatDefault, nil
	case "json":
		return FormatJSON, nil
	case "ecs":
		return FormatECS, nil
	default:
		return FormatDefault, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

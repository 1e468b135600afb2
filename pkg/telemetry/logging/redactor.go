package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Placeholder replaces every redacted value.
const Placeholder = "REDACTED"

// KeysToRedact are the configuration keys whose values are never shown.
var KeysToRedact = []string{"password", "basic_auth", "bearer_auth", "api_key", "id", "opaque_id"}

// logOnlyKeys are additionally redacted in log arguments.
var logOnlyKeys = []string{"authorization", "token", "api_token", "secret"}

// Redactor replaces sensitive values in configuration structures and log
// arguments.
type Redactor struct {
	keys     map[string]struct{}
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// defaultPatterns catch credentials embedded in free text.
var defaultPatterns = []*redactPattern{
	// user:password@ in URLs
	{regexp.MustCompile(`(://)[^/\s:@]+:[^/\s@]+@`), "${1}" + Placeholder + "@"},
	// Authorization header values
	{regexp.MustCompile(`(?i)\b(ApiKey|Bearer|Basic)\s+[A-Za-z0-9\-._~+/]+=*`), "$1 " + Placeholder},
}

// NewRedactor creates a Redactor for KeysToRedact plus extraKeys. Key
// matching is case-insensitive and exact.
func NewRedactor(extraKeys ...string) *Redactor {
	r := &Redactor{keys: make(map[string]struct{}), patterns: defaultPatterns}
	for _, k := range KeysToRedact {
		r.keys[k] = struct{}{}
	}
	for _, k := range extraKeys {
		r.keys[strings.ToLower(k)] = struct{}{}
	}
	return r
}

// Redact returns a deep copy of data with the values of KeysToRedact
// replaced by Placeholder at any depth. data is not modified.
func Redact(data map[string]any) map[string]any {
	return NewRedactor().Redact(data)
}

// Redact returns a deep copy of data with sensitive values replaced. Null
// values stay null so that unset fields are not mistaken for secrets.
func (r *Redactor) Redact(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		if r.isSensitiveKey(k) && v != nil {
			out[k] = Placeholder
			continue
		}
		out[k] = r.redactValue(v)
	}
	return out
}

func (r *Redactor) redactValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return r.Redact(x)
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return r.Redact(m)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = r.redactValue(item)
		}
		return out
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	default:
		return v
	}
}

// RedactString masks credentials embedded in free text.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactArgs redacts slog-style arguments: key/value pairs and slog.Attr
// values.
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	out := make([]any, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case slog.Attr:
			out = append(out, r.redactAttr(a))
		case string:
			if i+1 >= len(args) {
				out = append(out, a)
				continue
			}
			out = append(out, a, r.redactArg(a, args[i+1]))
			i++
		default:
			out = append(out, a)
		}
	}
	return out
}

func (r *Redactor) redactAttr(a slog.Attr) slog.Attr {
	if r.isSensitiveKey(a.Key) {
		return slog.String(a.Key, Placeholder)
	}
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	case slog.KindGroup:
		attrs := a.Value.Group()
		redacted := make([]any, len(attrs))
		for i, ga := range attrs {
			redacted[i] = r.redactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindAny:
		return slog.Any(a.Key, r.redactArg("", a.Value.Any()))
	}
	return a
}

func (r *Redactor) redactArg(key string, v any) any {
	if key != "" && r.isSensitiveKey(key) && v != nil {
		return Placeholder
	}
	switch x := v.(type) {
	case string:
		return r.RedactString(x)
	case []string:
		out := make([]string, len(x))
		for i, s := range x {
			out[i] = r.RedactString(s)
		}
		return out
	default:
		return r.redactValue(v)
	}
}

func (r *Redactor) isSensitiveKey(key string) bool {
	_, ok := r.keys[strings.ToLower(key)]
	return ok
}

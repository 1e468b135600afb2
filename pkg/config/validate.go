package config

import (
	"github.com/esclient-go/esclient/pkg/schema"
)

// HasBlock reports whether raw carries a usable elasticsearch block, either
// wrapped under "elasticsearch" or given directly as client/other_settings.
func HasBlock(raw map[string]any) bool {
	if es, ok := raw["elasticsearch"]; ok {
		_, isMap := es.(map[string]any)
		return isMap
	}
	_, hasClient := raw["client"]
	_, hasOther := raw["other_settings"]
	return hasClient || hasOther
}

// CheckConfig validates the elasticsearch block of raw and returns it with
// defaults filled in. The result always has "client" and "other_settings"
// maps. When raw carries no usable block the built-in default is validated
// instead. raw is not modified.
func CheckConfig(raw map[string]any) (map[string]any, error) {
	block := elasticsearchBlock(raw)

	for _, name := range []string{"client", "other_settings"} {
		sub, ok := block[name].(map[string]any)
		if !ok {
			if block[name] != nil {
				// Let the validator report the bad type with its value.
				continue
			}
			sub = map[string]any{}
		}
		block[name] = pruneNil(sub)
	}

	return schema.Validate(schema.NewConfigSchema(), block, TestWhat, Location)
}

// CheckLogging validates the logging block of raw, which may be absent.
func CheckLogging(raw map[string]any) (map[string]any, error) {
	block := map[string]any{}
	if m, ok := raw["logging"].(map[string]any); ok {
		block = pruneNil(m)
	}
	return schema.Validate(schema.NewLoggingSchema(), block, LoggingTestWhat, LoggingLocation)
}

func elasticsearchBlock(raw map[string]any) map[string]any {
	if !HasBlock(raw) {
		raw = DefaultConfig()
	}
	if es, ok := raw["elasticsearch"].(map[string]any); ok {
		return shallowCopy(es)
	}
	return shallowCopy(raw)
}

func shallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// pruneNil returns a copy of m without its null-valued keys.
func pruneNil(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

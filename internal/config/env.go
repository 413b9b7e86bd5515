package config

import (
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "STRUCTEDIT_"

// envMapping maps environment variables to setting paths.
var envMapping = map[string]string{
	"STRUCTEDIT_MAX_UNDO_ENTRIES": "editor.max_undo_entries",
	"STRUCTEDIT_READ_ONLY":        "editor.read_only",
	"STRUCTEDIT_PRESERVE":         "whitespace.preserve",
	"STRUCTEDIT_LOG_LEVEL":        "log.level",
	"STRUCTEDIT_CALL_LIMIT":       "script.call_limit",
	"STRUCTEDIT_SCRIPT_TIMEOUT":   "script.timeout",
}

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// loadEnv reads the mapped environment variables into a settings map.
// Empty values are treated as set.
func loadEnv(lookup LookupFunc) map[string]any {
	m := make(map[string]any)
	for env, path := range envMapping {
		val, ok := lookup(env)
		if !ok {
			continue
		}
		setByPath(m, path, parseEnvValue(path, val))
	}
	return m
}

// parseEnvValue converts a variable to the type of its setting. Values that
// do not convert are passed through and rejected by decoding.
func parseEnvValue(path, s string) any {
	switch path {
	case "whitespace.preserve":
		var names []any
		for _, n := range strings.Split(s, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		return names
	case "log.level", "script.timeout":
		return s
	}

	lower := strings.ToLower(s)
	switch lower {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
